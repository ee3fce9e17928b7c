// Package analytics aggregates per-skill assessment statistics.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/zirakhr/zirak/internal/skills"
)

// Kind is the lifecycle step an Event reports.
type Kind string

const (
	KindCreated   Kind = "created"
	KindStarted   Kind = "started"
	KindCompleted Kind = "completed"
	KindExpired   Kind = "expired"
)

// Event is a single assessment lifecycle step.
type Event struct {
	Kind      Kind
	SkillID   string
	SkillName string
	UserID    string
	Type      string
	Level     skills.Level

	// Score, Passed and TimeSpentSecs are set for KindCompleted only.
	Score         int
	Passed        bool
	TimeSpentSecs int

	At time.Time
}

// Recorder consumes lifecycle events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Store is a Recorder that can also report aggregated stats.
type Store interface {
	Recorder
	SkillStats(ctx context.Context, skillID string) (*SkillStats, error)
	AllSkillStats(ctx context.Context) ([]SkillStats, error)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

// Multi fans an event out to several recorders. Every recorder sees the
// event even if an earlier one fails; the errors are joined.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, e Event) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SkillStats is the running aggregate for one skill.
type SkillStats struct {
	SkillID   string `json:"skillId"`
	SkillName string `json:"skillName"`

	Taken     int64 `json:"assessmentsTaken"`
	Started   int64 `json:"assessmentsStarted"`
	Completed int64 `json:"assessmentsCompleted"`
	Passed    int64 `json:"assessmentsPassed"`
	Failed    int64 `json:"assessmentsFailed"`
	Expired   int64 `json:"assessmentsExpired"`
	Verified  int64 `json:"verifiedUsers"`

	ScoreSum     int64 `json:"-"`
	TimeSpentSum int64 `json:"-"`

	// ByLevel counts created assessments per target level.
	ByLevel map[skills.Level]int64 `json:"difficultyDistribution"`
}

// AverageScore is the mean score over completed assessments.
func (s SkillStats) AverageScore() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.ScoreSum) / float64(s.Completed)
}

// AverageTimeSecs is the mean time to complete.
func (s SkillStats) AverageTimeSecs() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.TimeSpentSum) / float64(s.Completed)
}

// PassRate is the share of completed assessments that passed.
func (s SkillStats) PassRate() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Completed)
}

// Apply folds e into s.
func (s *SkillStats) Apply(e Event) {
	if s.SkillID == "" {
		s.SkillID = e.SkillID
	}
	if e.SkillName != "" {
		s.SkillName = e.SkillName
	}
	switch e.Kind {
	case KindCreated:
		s.Taken++
		if s.ByLevel == nil {
			s.ByLevel = make(map[skills.Level]int64)
		}
		s.ByLevel[e.Level]++
	case KindStarted:
		s.Started++
	case KindCompleted:
		s.Completed++
		s.ScoreSum += int64(e.Score)
		s.TimeSpentSum += int64(e.TimeSpentSecs)
		if e.Passed {
			s.Passed++
			s.Verified++
		} else {
			s.Failed++
		}
	case KindExpired:
		s.Expired++
	}
}
