package assessment

import (
	"time"

	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
)

// Type is the kind of assessment.
type Type string

const (
	TypeQuiz            Type = "quiz"
	TypeCodingChallenge Type = "coding_challenge"
	TypeProject         Type = "project"
	TypeInterview       Type = "interview"
)

// ParseType validates a type string. An empty string means quiz.
func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case "":
		return TypeQuiz, true
	case TypeQuiz, TypeCodingChallenge, TypeProject, TypeInterview:
		return t, true
	}
	return "", false
}

// Status is the lifecycle state of an assessment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusExpired    Status = "expired"
)

// Open reports whether an assessment in this status can still be completed
// or expired.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusInProgress
}

// Assessment is one attempt by a user to verify a skill. Records are never
// deleted; each attempt is kept as history.
type Assessment struct {
	ID        string       `json:"id"`
	SkillID   string       `json:"skillId"`
	SkillName string       `json:"skillName"`
	UserID    string       `json:"userId"`
	Type      Type         `json:"type"`
	Level     skills.Level `json:"level"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Questions []questionbank.Question `json:"questions,omitempty"`
	Challenge *CodingChallenge        `json:"codingChallenge,omitempty"`

	Status       Status `json:"status"`
	Score        *int   `json:"score,omitempty"`
	PassingScore int    `json:"passingScore"`
	Passed       *bool  `json:"passed,omitempty"`
	Feedback     string `json:"feedback,omitempty"`

	TimeLimitMins int `json:"timeLimit"`
	TimeSpentSecs int `json:"timeSpent,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Deadline returns when an in-progress assessment runs out of time.
func (a *Assessment) Deadline() (time.Time, bool) {
	if a.StartedAt == nil || a.TimeLimitMins <= 0 {
		return time.Time{}, false
	}
	return a.StartedAt.Add(time.Duration(a.TimeLimitMins) * time.Minute), true
}

// Answer is the option a candidate picked for one question.
type Answer struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId"`
}

// CodeSubmission is one piece of code submitted for a coding challenge.
type CodeSubmission struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Submission carries everything a candidate hands in.
type Submission struct {
	Answers []Answer `json:"answers"`

	// Code is graded externally for coding challenges.
	Code []CodeSubmission `json:"code,omitempty"`

	// Scores are per-submission scores (0-100) supplied by an external
	// grader or reviewer. Used for every non-quiz type.
	Scores []float64 `json:"scores,omitempty"`

	TimeSpentSecs int `json:"timeSpent"`
}

// Result is the outcome of completing an assessment.
type Result struct {
	Score    int    `json:"score"`
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`

	// Correct and Total count questions, quiz only.
	Correct int `json:"correct,omitempty"`
	Total   int `json:"total,omitempty"`
}

// Principal identifies the authenticated caller of an operation.
type Principal struct {
	UserID string
}

// ListFilter narrows assessment history. Empty fields match everything and
// a zero Limit returns all matches.
type ListFilter struct {
	UserID  string
	SkillID string
	Status  Status
	Limit   int
}
