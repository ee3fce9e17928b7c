package assessment

import (
	"math"

	"github.com/zirakhr/zirak/internal/questionbank"
)

// QuizScore is the breakdown of a graded quiz.
type QuizScore struct {
	Awarded int
	Total   int
	Correct int
	Score   int
}

// ScoreQuiz grades answers against questions. A question earns its full
// points when the selected option equals the correct option. Answers for
// unknown question IDs are ignored and unanswered questions earn nothing.
// If an answer for the same question appears twice the last one counts.
func ScoreQuiz(questions []questionbank.Question, answers []Answer) QuizScore {
	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOptionID
	}

	var s QuizScore
	for _, q := range questions {
		s.Total += q.Points
		if opt, ok := selected[q.ID]; ok && opt == q.CorrectOptionID {
			s.Awarded += q.Points
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Score = int(math.Round(100 * float64(s.Awarded) / float64(s.Total)))
	}
	return s
}

// ScoreExternal averages per-submission scores from an external grader.
// No submissions scores 0. The result is clamped to 0..100.
func ScoreExternal(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return clamp(int(math.Round(sum/float64(len(scores)))), 0, 100)
}

// Passed reports whether score meets the threshold.
func Passed(score, passingScore int) bool {
	return score >= passingScore
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
