package api

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
)

// AssessmentResponse is the public view of an assessment. Correct answers
// are only included once the assessment is completed.
type AssessmentResponse struct {
	ID          string            `json:"id"`
	SkillID     string            `json:"skillId"`
	SkillName   string            `json:"skillName"`
	Type        assessment.Type   `json:"type"`
	Level       skills.Level      `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      assessment.Status `json:"status"`

	Questions []QuestionResponse          `json:"questions,omitempty" copier:"-"`
	Challenge *assessment.CodingChallenge `json:"codingChallenge,omitempty"`

	Score        *int   `json:"score,omitempty"`
	PassingScore int    `json:"passingScore"`
	Passed       *bool  `json:"passed,omitempty"`
	Feedback     string `json:"feedback,omitempty"`

	TimeLimitMins int `json:"timeLimit"`
	TimeSpentSecs int `json:"timeSpent,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// QuestionResponse is one question as shown to the candidate.
type QuestionResponse struct {
	ID              string                `json:"id"`
	Text            string                `json:"text"`
	Options         []questionbank.Option `json:"options"`
	Difficulty      skills.Level          `json:"difficulty"`
	Points          int                   `json:"points"`
	CorrectOptionID string                `json:"correctOptionId,omitempty"`
	Explanation     string                `json:"explanation,omitempty"`
}

// SubmitResponse pairs the completed assessment with its result.
type SubmitResponse struct {
	Assessment AssessmentResponse `json:"assessment"`
	Result     assessment.Result  `json:"result"`
}

// SkillStatsResponse adds derived averages to the raw counters.
type SkillStatsResponse struct {
	analytics.SkillStats
	AverageScore    float64 `json:"averageScore"`
	AverageTimeSecs float64 `json:"averageTimeToComplete"`
	PassRate        float64 `json:"passRate"`
}

func toAssessmentResponse(a *assessment.Assessment) (AssessmentResponse, error) {
	var resp AssessmentResponse
	if err := copier.Copy(&resp, a); err != nil {
		return resp, err
	}
	if len(a.Questions) > 0 {
		if err := copier.Copy(&resp.Questions, &a.Questions); err != nil {
			return resp, err
		}
	}
	if a.Status != assessment.StatusCompleted {
		for i := range resp.Questions {
			resp.Questions[i].CorrectOptionID = ""
			resp.Questions[i].Explanation = ""
		}
	}
	return resp, nil
}

func toAssessmentResponses(list []assessment.Assessment) ([]AssessmentResponse, error) {
	out := make([]AssessmentResponse, 0, len(list))
	for i := range list {
		r, err := toAssessmentResponse(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func toSkillStatsResponse(s analytics.SkillStats) SkillStatsResponse {
	return SkillStatsResponse{
		SkillStats:      s,
		AverageScore:    s.AverageScore(),
		AverageTimeSecs: s.AverageTimeSecs(),
		PassRate:        s.PassRate(),
	}
}
