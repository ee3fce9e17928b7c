package assessment

import (
	"context"

	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/skills"
)

// Repository persists assessment records.
type Repository interface {
	Create(ctx context.Context, a *Assessment) error

	// Get returns ErrNotFound when no record has the id.
	Get(ctx context.Context, id string) (*Assessment, error)

	// List returns matching records, newest first.
	List(ctx context.Context, f ListFilter) ([]Assessment, error)

	// FindPending returns the newest pending record for the user and skill,
	// or nil if there is none.
	FindPending(ctx context.Context, userID, skillID string) (*Assessment, error)

	// LatestCompleted returns the most recently completed record for the
	// user and skill, or nil if there is none.
	LatestCompleted(ctx context.Context, userID, skillID string) (*Assessment, error)

	// Update writes a only if the stored status still equals from. When the
	// stored status differs it returns a *StateError.
	Update(ctx context.Context, a *Assessment, from Status) error
}

// SkillResolver looks up catalog skills by id or name.
type SkillResolver interface {
	Find(ref string) (skills.Skill, error)
}

// ProfileUpdater marks profile skills as verified.
type ProfileUpdater interface {
	ApplyVerification(ctx context.Context, userID string, v profile.Verification) error
}

// Grader scores submitted code for a coding challenge. It returns one
// score in 0..100 per submission.
type Grader interface {
	Grade(ctx context.Context, c *CodingChallenge, skillName string, code []CodeSubmission) ([]float64, error)
}
