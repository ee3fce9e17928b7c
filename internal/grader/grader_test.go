package grader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/llm"
	"github.com/zirakhr/zirak/internal/skills"
)

func TestLLMGrader_Grade(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockJSON(map[string]any{"score": 72, "feedback": "Works, but no error handling."}),
		llm.MockJSON(map[string]any{"score": 91, "feedback": "Clean."}),
	)
	g := NewLLMGrader(mock, DefaultConfig())
	c := assessment.NewCodingChallenge("Go", skills.Advanced)

	scores, err := g.Grade(context.Background(), c, "Go", []assessment.CodeSubmission{
		{Language: "go", Code: "package main\n\nfunc main() {}"},
		{Language: "go", Code: "package main // v2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{72, 91}, scores)

	require.Equal(t, 2, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, Schema, req.Schema)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Skill: Go")
	assert.Contains(t, msg, "Level: Advanced")
	assert.Contains(t, msg, "- Optimization")
	assert.Contains(t, msg, "input: Sample input 1 -> expected: Sample output 1")
	assert.Contains(t, msg, "```go\npackage main")
}

func TestLLMGrader_ProviderErrorAborts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockJSON(map[string]any{"score": 80, "feedback": "ok"}),
	)
	g := NewLLMGrader(mock, DefaultConfig())

	_, err := g.Grade(context.Background(), assessment.NewCodingChallenge("Go", skills.Beginner), "Go", []assessment.CodeSubmission{
		{Code: "a"}, {Code: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grade submission 1")
}

func TestLLMGrader_NoChallenge(t *testing.T) {
	g := NewLLMGrader(llm.NewMockProvider(), DefaultConfig())
	_, err := g.Grade(context.Background(), nil, "Go", []assessment.CodeSubmission{{Code: "x"}})
	assert.Error(t, err)
}

func TestBuildUserMessage_TruncatesLongCode(t *testing.T) {
	c := assessment.NewCodingChallenge("Python", skills.Intermediate)
	long := strings.Repeat("x", MaxCodeBytes+100)
	msg := buildUserMessage(c, "Python", assessment.CodeSubmission{Code: long})
	assert.Contains(t, msg, "(truncated)")
	assert.Contains(t, msg, "Submission (text)")
	assert.Less(t, len(msg), MaxCodeBytes+2048)
}
