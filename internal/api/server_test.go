package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/skills"
	"github.com/zirakhr/zirak/internal/store"
)

var dbSeq atomic.Int64

type testEnv struct {
	srv   *httptest.Server
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:api-test-%d?mode=memory&cache=shared", dbSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	catalog := skills.DefaultCatalog()
	profiles := profile.NewService(st.Profiles())
	svc := assessment.NewService(assessment.Deps{
		Repo:      st.Assessments(),
		Skills:    catalog,
		Profiles:  profiles,
		Analytics: st.Analytics(),
	}, assessment.DefaultConfig())

	s := NewServer(config.New().Server, Deps{
		Assessments: svc,
		Profiles:    profiles,
		Catalog:     catalog,
		Stats:       st.Analytics(),
		APIKeys:     map[string]string{"alice-key-123": "alice", "bob-key-4567": "bob"},
		Ping:        st.Ping,
	})
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: st}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func (e *testEnv) do(t *testing.T, key, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestAPI_RequiresAPIKey(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, "", http.MethodGet, "/api/v1/assessments", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", env.Error.Code)

	resp, _ = e.do(t, "wrong-key-000", http.MethodGet, "/api/v1/assessments", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_QuizLifecycle(t *testing.T) {
	e := newTestEnv(t)
	const alice = "alice-key-123"

	resp, env := e.do(t, alice, http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "Go", Level: "beginner"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[AssessmentResponse](t, env)
	assert.Equal(t, "go", created.SkillID)
	assert.Equal(t, assessment.StatusPending, created.Status)
	assert.Equal(t, 10, created.TimeLimitMins)
	assert.Equal(t, 65, created.PassingScore)
	require.Len(t, created.Questions, 10)
	assert.NotContains(t, string(env.Data), "correctOptionId")

	// Same skill again returns the pending one.
	resp, env = e.do(t, alice, http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "go"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[AssessmentResponse](t, env).ID)

	path := "/api/v1/assessments/" + created.ID
	resp, env = e.do(t, alice, http.MethodPost, path+"/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, assessment.StatusInProgress, decode[AssessmentResponse](t, env).Status)

	resp, env = e.do(t, alice, http.MethodPost, path+"/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_state", env.Error.Code)

	stored, err := e.store.Assessments().Get(context.Background(), created.ID)
	require.NoError(t, err)
	sub := assessment.Submission{TimeSpentSecs: 240}
	for _, q := range stored.Questions {
		sub.Answers = append(sub.Answers, assessment.Answer{QuestionID: q.ID, SelectedOptionID: q.CorrectOptionID})
	}

	resp, env = e.do(t, alice, http.MethodPost, path+"/submit", sub)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[SubmitResponse](t, env)
	assert.Equal(t, 100, out.Result.Score)
	assert.True(t, out.Result.Passed)
	assert.Contains(t, out.Result.Feedback, "Excellent")
	assert.Equal(t, assessment.StatusCompleted, out.Assessment.Status)
	assert.NotEmpty(t, out.Assessment.Questions[0].CorrectOptionID, "answers revealed after completion")

	resp, env = e.do(t, alice, http.MethodPost, path+"/submit", sub)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = e.do(t, alice, http.MethodGet, "/api/v1/profile/skills", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]profile.SkillEntry](t, env)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Verified)
	assert.Equal(t, skills.Beginner, entries[0].Proficiency)

	resp, env = e.do(t, alice, http.MethodGet, "/api/v1/analytics/skills/go", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[SkillStatsResponse](t, env)
	assert.Equal(t, int64(1), stats.Taken)
	assert.Equal(t, int64(1), stats.Completed)
	assert.InDelta(t, 100.0, stats.AverageScore, 1e-9)
	assert.InDelta(t, 240.0, stats.AverageTimeSecs, 1e-9)

	resp, env = e.do(t, alice, http.MethodGet, "/api/v1/assessments?status=completed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]AssessmentResponse](t, env), 1)
}

func TestAPI_OwnershipAndLookupErrors(t *testing.T) {
	e := newTestEnv(t)

	_, env := e.do(t, "alice-key-123", http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "react"})
	id := decode[AssessmentResponse](t, env).ID

	resp, env := e.do(t, "bob-key-4567", http.MethodGet, "/api/v1/assessments/"+id, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", env.Error.Code)

	resp, _ = e.do(t, "bob-key-4567", http.MethodGet, "/api/v1/assessments/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = e.do(t, "bob-key-4567", http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "cobol"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env = e.do(t, "bob-key-4567", http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "go", Type: "essay"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_input", env.Error.Code)

	resp, env = e.do(t, "bob-key-4567", http.MethodPost, "/api/v1/assessments", map[string]any{"skill": "go", "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_body", env.Error.Code)

	resp, _ = e.do(t, "bob-key-4567", http.MethodGet, "/api/v1/assessments?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_FailedAttemptStartsCooldown(t *testing.T) {
	e := newTestEnv(t)
	const bob = "bob-key-4567"

	_, env := e.do(t, bob, http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "python", Level: "expert"})
	id := decode[AssessmentResponse](t, env).ID

	resp, env := e.do(t, bob, http.MethodPost, "/api/v1/assessments/"+id+"/submit", assessment.Submission{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[SubmitResponse](t, env)
	assert.Equal(t, 0, out.Result.Score)
	assert.False(t, out.Result.Passed)

	resp, env = e.do(t, bob, http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "python"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "cooldown", env.Error.Code)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestAPI_ExpireAndSkills(t *testing.T) {
	e := newTestEnv(t)
	const alice = "alice-key-123"

	_, env := e.do(t, alice, http.MethodPost, "/api/v1/assessments", assessment.CreateRequest{Skill: "docker", Type: "coding_challenge", Level: "advanced"})
	a := decode[AssessmentResponse](t, env)
	require.NotNil(t, a.Challenge)
	assert.Equal(t, 60, a.TimeLimitMins)

	resp, env := e.do(t, alice, http.MethodPost, "/api/v1/assessments/"+a.ID+"/expire", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, assessment.StatusExpired, decode[AssessmentResponse](t, env).Status)

	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/assessments/"+a.ID+"/expire", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = e.do(t, alice, http.MethodGet, "/api/v1/skills?category=frontend", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, s := range decode[[]skills.Skill](t, env) {
		assert.Equal(t, skills.CategoryFrontend, s.Category)
	}
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	resp, env := e.do(t, "", http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, _ = e.do(t, "", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/metrics", nil)
	mresp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, _ := io.ReadAll(mresp.Body)
	assert.Contains(t, string(body), `zirak_http_requests_total{code="200",method="GET",route="/healthz"}`)
}
