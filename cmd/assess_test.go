package cmd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/questionbank"
)

func testQuestions() []questionbank.Question {
	return []questionbank.Question{
		{ID: "q1", Options: []questionbank.Option{{ID: "q1-a"}, {ID: "q1-b"}, {ID: "q1-c"}}},
		{ID: "q2", Options: []questionbank.Option{{ID: "x"}, {ID: "y"}}},
	}
}

func TestParseAnswers(t *testing.T) {
	tests := []struct {
		name  string
		specs []string
		want  []assessment.Answer
	}{
		{"option id", []string{"q1=q1-b"}, []assessment.Answer{{QuestionID: "q1", SelectedOptionID: "q1-b"}}},
		{"letter", []string{"q1=c"}, []assessment.Answer{{QuestionID: "q1", SelectedOptionID: "q1-c"}}},
		{"numbers", []string{"2=1"}, []assessment.Answer{{QuestionID: "q2", SelectedOptionID: "x"}}},
		{"spaces", []string{" q2 = B "}, []assessment.Answer{{QuestionID: "q2", SelectedOptionID: "y"}}},
		{"none", nil, []assessment.Answer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswers(testQuestions(), tt.specs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAnswersErrors(t *testing.T) {
	for _, arg := range []string{"q1", "q9=a", "3=a", "q2=c", "q1=0"} {
		t.Run(arg, func(t *testing.T) {
			_, err := parseAnswers(testQuestions(), []string{arg})
			assert.ErrorIs(t, err, assessment.ErrInvalidInput)
		})
	}
}

func TestResolvePrincipal(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("user", "", "")

	t.Setenv("ZIRAK_USER", "env-user")
	assert.Equal(t, "env-user", resolvePrincipal(cmd).UserID)

	require.NoError(t, cmd.Flags().Set("user", "flag-user"))
	assert.Equal(t, "flag-user", resolvePrincipal(cmd).UserID)
}

func TestHideAnswers(t *testing.T) {
	qs := []questionbank.Question{{ID: "q1", CorrectOptionID: "a", Explanation: "because"}}
	hidden := hideAnswers(qs)
	assert.Empty(t, hidden[0].CorrectOptionID)
	assert.Empty(t, hidden[0].Explanation)
	assert.Equal(t, "a", qs[0].CorrectOptionID, "input untouched")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Kuberne...", truncate("Kubernetes Operators", 10))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Store.DSN = fmt.Sprintf("file:cmd-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	return cfg
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	e, err := newEngine(ctx, testConfig(t))
	require.NoError(t, err)
	defer e.close()

	p := assessment.Principal{UserID: "cli"}
	a, created, err := e.assessments.Create(ctx, p, assessment.CreateRequest{Skill: "go", Level: "beginner"})
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, a.Questions, 10)

	_, err = e.assessments.Start(ctx, p, a.ID)
	require.NoError(t, err)

	var specs []string
	for _, q := range a.Questions {
		specs = append(specs, q.ID+"="+q.CorrectOptionID)
	}
	answers, err := parseAnswers(a.Questions, specs)
	require.NoError(t, err)

	done, res, err := e.assessments.Submit(ctx, p, a.ID, assessment.Submission{Answers: answers})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, assessment.StatusCompleted, done.Status)

	entries, err := e.profiles.Skills(ctx, p.UserID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Verified)

	st, err := e.store.Analytics().SkillStats(ctx, a.SkillID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.EqualValues(t, 1, st.Passed)
}

func TestNewAssessmentServiceBadBank(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assessment.BankFile = "/nonexistent/bank.yaml"
	_, err := newEngine(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSweepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e, err := newEngine(ctx, testConfig(t))
	require.NoError(t, err)
	defer e.close()

	done := make(chan struct{})
	go func() {
		sweep(ctx, e.assessments, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop")
	}
}
