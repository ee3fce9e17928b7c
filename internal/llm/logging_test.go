package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderSpy struct {
	events []RequestEvent
	err    error
}

func (r *recorderSpy) AppendLLMRequest(_ context.Context, e RequestEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"score":90}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16},
	})
	rec := &recorderSpy{}
	p := WithLogging(mock, rec)

	ctx := WithPurpose(context.Background(), PurposeCodeGrading)
	_, err := p.Generate(ctx, Request{
		System:   "grade",
		Messages: UserMessage("func main() {}"),
		Schema:   &Schema{Name: "grade", Definition: map[string]any{"type": "object"}},
	})
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	e := rec.events[0]
	assert.Equal(t, ProviderMock, e.Provider)
	assert.Equal(t, "mock", e.Model)
	assert.Equal(t, PurposeCodeGrading, e.Purpose)
	assert.True(t, e.Success)
	assert.Equal(t, 12, e.InputTokens)
	assert.Equal(t, `{"score":90}`, e.ResponseBody)
	assert.True(t, strings.Contains(e.RequestBody, "[system]\ngrade"))
	assert.True(t, strings.Contains(e.RequestBody, "[schema: grade]"))
	assert.False(t, e.At.IsZero())
}

func TestLoggingProvider_RecordsFailureAndIgnoresRecorderError(t *testing.T) {
	boom := errors.New("upstream down")
	mock := NewMockProvider(MockResponse{Err: boom})
	rec := &recorderSpy{err: errors.New("disk full")}

	_, err := WithLogging(mock, rec).Generate(context.Background(), Request{})
	require.ErrorIs(t, err, boom)

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Success)
	assert.Equal(t, "upstream down", rec.events[0].ErrorMessage)
	assert.Equal(t, "unknown", rec.events[0].Purpose)
}

func TestLoggingProvider_NilRecorder(t *testing.T) {
	mock := NewMockProvider(MockJSON(map[string]int{"score": 1}))
	resp, err := WithLogging(mock, nil).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":1}`, string(resp.Content))
}
