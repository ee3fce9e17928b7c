package questionbank

import "fmt"

const (
	maxQuestionLen = 500
	maxOptionLen   = 200
	minOptions     = 2
	maxOptions     = 6
)

// StructuralValidator checks required fields, length limits, option
// integrity and point weights.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}

	if q.ID == "" {
		return fail("id is empty")
	}
	if q.Text == "" {
		return fail("text is empty")
	}
	if len(q.Text) > maxQuestionLen {
		return fail("text exceeds %d characters", maxQuestionLen)
	}
	if len(q.Options) < minOptions || len(q.Options) > maxOptions {
		return fail("needs %d to %d options, got %d", minOptions, maxOptions, len(q.Options))
	}

	ids := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if o.ID == "" || o.Text == "" {
			return fail("option with empty id or text")
		}
		if len(o.Text) > maxOptionLen {
			return fail("option %s exceeds %d characters", o.ID, maxOptionLen)
		}
		if ids[o.ID] {
			return fail("duplicate option id %q", o.ID)
		}
		ids[o.ID] = true
	}
	if !ids[q.CorrectOptionID] {
		return fail("correct option %q is not one of the options", q.CorrectOptionID)
	}

	if !q.Difficulty.Valid() {
		return fail("unknown difficulty %q", q.Difficulty)
	}
	if q.Points != q.Difficulty.Points() {
		return fail("points %d do not match %s weight %d", q.Points, q.Difficulty, q.Difficulty.Points())
	}
	return nil
}
