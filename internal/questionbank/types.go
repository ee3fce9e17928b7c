package questionbank

import "github.com/zirakhr/zirak/internal/skills"

// Option is one answer choice of a multiple-choice question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single scored multiple-choice question.
type Question struct {
	ID string `json:"id"`

	// Text is the prompt shown to the candidate.
	Text string `json:"text"`

	// Options holds at least two choices, one of which is correct.
	Options []Option `json:"options"`

	// CorrectOptionID references one of Options.
	CorrectOptionID string `json:"correctOptionId"`

	Difficulty skills.Level `json:"difficulty"`

	// Points awarded for a correct answer, derived from Difficulty.
	Points int `json:"points"`

	// Explanation is an optional worked answer shown after completion.
	Explanation string `json:"explanation,omitempty"`
}

// OptionIndex returns the position of the option with the given ID, or -1.
func (q Question) OptionIndex(id string) int {
	for i, o := range q.Options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Input is everything a Generator needs to build a question set.
type Input struct {
	Skill skills.Skill

	// Level is the target level of the assessment, not of single questions.
	Level skills.Level

	// Counts is the number of questions wanted per difficulty.
	Counts Counts
}

// NewInput builds an Input with the counts planned for level.
func NewInput(skill skills.Skill, level skills.Level) Input {
	return Input{Skill: skill, Level: level, Counts: Plan(level)}
}
