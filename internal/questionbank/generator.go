package questionbank

import (
	"context"
	"fmt"

	"github.com/zirakhr/zirak/internal/skills"
)

// Generator produces the question set for an assessment.
type Generator interface {
	// Generate returns a validated question set matching input.Counts.
	Generate(ctx context.Context, input Input) ([]Question, error)
}

func bucketQuestionID(difficulty skills.Level, index int) string {
	return fmt.Sprintf("q-%s-%d", difficulty, index)
}

func optionID(qid string, n int) string {
	return fmt.Sprintf("%s-opt-%d", qid, n)
}
