package questionbank

import (
	"fmt"
	"strings"
)

// Validator checks a single question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages and logs.
	Name() string

	// Validate returns nil if q passes the check.
	Validate(q *Question, input Input) *ValidationError
}

// ValidationError describes why a question or question set was rejected.
type ValidationError struct {
	Validator  string
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("validator %q: question %s: %s", e.Validator, e.QuestionID, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators is the chain applied to every generated question.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}}
}

// ValidateSet runs validators over every question, then checks set-level
// invariants: unique IDs and the planned difficulty mix.
func ValidateSet(qs []Question, input Input, validators []Validator) error {
	for i := range qs {
		for _, v := range validators {
			if verr := v.Validate(&qs[i], input); verr != nil {
				verr.QuestionID = qs[i].ID
				return verr
			}
		}
	}

	seen := make(map[string]bool, len(qs))
	texts := make(map[string]bool, len(qs))
	for _, q := range qs {
		if seen[q.ID] {
			return &ValidationError{Validator: "set", Message: fmt.Sprintf("duplicate question ID %q", q.ID)}
		}
		seen[q.ID] = true

		t := strings.ToLower(strings.TrimSpace(q.Text))
		if texts[t] {
			return &ValidationError{Validator: "set", QuestionID: q.ID, Message: "duplicate question text"}
		}
		texts[t] = true
	}

	if got := CountQuestions(qs); got != input.Counts {
		return &ValidationError{
			Validator: "set",
			Message:   fmt.Sprintf("difficulty mix %v does not match plan %v", got, input.Counts),
		}
	}
	return nil
}
