package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/fallback"
	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
)

// DefaultRetakeCooldown is how long a failed attempt blocks a new one.
const DefaultRetakeCooldown = 7 * 24 * time.Hour

// Config tunes the assessment service.
type Config struct {
	// RetakeCooldown blocks a new attempt after a failed one. Zero disables.
	RetakeCooldown time.Duration

	// SubmitGrace is added to the time limit before a submission is
	// treated as late.
	SubmitGrace time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RetakeCooldown: DefaultRetakeCooldown,
		SubmitGrace:    30 * time.Second,
	}
}

// Deps are the collaborators of a Service. Repo and Skills are required.
type Deps struct {
	Repo     Repository
	Skills   SkillResolver
	Profiles ProfileUpdater

	// Questions builds quiz question sets. Defaults to placeholders.
	Questions questionbank.Generator

	// AIQuestions optionally overrides the set built by Questions.
	AIQuestions questionbank.Generator

	Grader    Grader
	Analytics analytics.Recorder

	Now   func() time.Time
	NewID func() string
}

// Service runs the assessment lifecycle on behalf of a principal.
type Service struct {
	repo        Repository
	skills      SkillResolver
	profiles    ProfileUpdater
	questions   questionbank.Generator
	aiQuestions questionbank.Generator
	placeholder *questionbank.PlaceholderGenerator
	validators  []questionbank.Validator
	grader      Grader
	analytics   analytics.Recorder
	now         func() time.Time
	newID       func() string
	cfg         Config
}

// NewService creates a Service. Missing optional collaborators get no-op
// or placeholder defaults.
func NewService(d Deps, cfg Config) *Service {
	s := &Service{
		repo:        d.Repo,
		skills:      d.Skills,
		profiles:    d.Profiles,
		questions:   d.Questions,
		aiQuestions: d.AIQuestions,
		placeholder: questionbank.NewPlaceholderGenerator(nil),
		validators:  questionbank.DefaultValidators(),
		grader:      d.Grader,
		analytics:   d.Analytics,
		now:         d.Now,
		newID:       d.NewID,
		cfg:         cfg,
	}
	if s.questions == nil {
		s.questions = s.placeholder
	}
	if s.analytics == nil {
		s.analytics = analytics.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateRequest asks for a new assessment.
type CreateRequest struct {
	// Skill is a catalog skill id or name.
	Skill string `json:"skill"`

	// Level is the target proficiency. Unknown values mean intermediate.
	Level string `json:"level"`

	// Type defaults to quiz.
	Type string `json:"type"`
}

// Create generates and persists a pending assessment. If the principal
// already has a pending assessment for the skill, that one is returned and
// created is false.
func (s *Service) Create(ctx context.Context, p Principal, req CreateRequest) (a *Assessment, created bool, err error) {
	if p.UserID == "" {
		return nil, false, fmt.Errorf("%w: missing user", ErrInvalidInput)
	}
	typ, ok := ParseType(req.Type)
	if !ok {
		return nil, false, fmt.Errorf("%w: unknown assessment type %q", ErrInvalidInput, req.Type)
	}
	skill, err := s.skills.Find(req.Skill)
	if err != nil {
		if errors.Is(err, skills.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: skill %q", ErrNotFound, req.Skill)
		}
		return nil, false, fmt.Errorf("resolve skill: %w", err)
	}
	level := skills.ParseLevel(req.Level)

	pending, err := s.repo.FindPending(ctx, p.UserID, skill.ID)
	if err != nil {
		return nil, false, fmt.Errorf("find pending assessment: %w", err)
	}
	if pending != nil {
		return pending, false, nil
	}

	now := s.now()
	if err := s.checkCooldown(ctx, p.UserID, skill.ID, now); err != nil {
		return nil, false, err
	}

	a = s.build(ctx, p.UserID, skill, level, typ, now)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, false, fmt.Errorf("save assessment: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("assessment_id", a.ID).
		Str("skill", skill.ID).
		Str("user_id", p.UserID).
		Str("level", string(level)).
		Str("type", string(typ)).
		Msg("assessment created")
	s.record(ctx, a, analytics.KindCreated, nil)
	return a, true, nil
}

func (s *Service) checkCooldown(ctx context.Context, userID, skillID string, now time.Time) error {
	if s.cfg.RetakeCooldown <= 0 {
		return nil
	}
	last, err := s.repo.LatestCompleted(ctx, userID, skillID)
	if err != nil {
		return fmt.Errorf("find last attempt: %w", err)
	}
	if last == nil || last.Passed == nil || *last.Passed || last.CompletedAt == nil {
		return nil
	}
	until := last.CompletedAt.Add(s.cfg.RetakeCooldown)
	if now.Before(until) {
		return &CooldownError{Until: until}
	}
	return nil
}

func (s *Service) build(ctx context.Context, userID string, skill skills.Skill, level skills.Level, typ Type, now time.Time) *Assessment {
	prof := skills.ProfileFor(level)
	title, desc := Describe(typ, skill.Name, level)

	a := &Assessment{
		ID:            s.newID(),
		SkillID:       skill.ID,
		SkillName:     skill.Name,
		UserID:        userID,
		Type:          typ,
		Level:         prof.Level,
		Title:         title,
		Description:   desc,
		Status:        StatusPending,
		PassingScore:  prof.PassingScore,
		TimeLimitMins: prof.TimeLimitMins,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	switch typ {
	case TypeQuiz:
		a.Questions = s.questionSet(ctx, questionbank.NewInput(skill, prof.Level))
	case TypeCodingChallenge:
		a.Challenge = NewCodingChallenge(skill.Name, prof.Level)
		a.TimeLimitMins = a.Challenge.TimeLimitMins
	default:
		a.TimeLimitMins = 0
	}
	return a
}

// questionSet asks the configured generator, then the optional AI
// generator, and falls back to placeholders when neither yields a valid set.
func (s *Service) questionSet(ctx context.Context, input questionbank.Input) []questionbank.Question {
	qs := fallback.Call(ctx, "question-bank", s.generate(s.questions, input), nil)
	if s.aiQuestions != nil {
		qs = fallback.Call(ctx, "ai-question-generator", s.generate(s.aiQuestions, input), qs)
	}
	if qs != nil {
		return qs
	}
	qs, _ = s.placeholder.Generate(ctx, input)
	return qs
}

func (s *Service) generate(g questionbank.Generator, input questionbank.Input) func(context.Context) ([]questionbank.Question, error) {
	return func(ctx context.Context) ([]questionbank.Question, error) {
		qs, err := g.Generate(ctx, input)
		if err != nil {
			return nil, err
		}
		if err := questionbank.ValidateSet(qs, input, s.validators); err != nil {
			return nil, err
		}
		return qs, nil
	}
}

// Get returns an assessment owned by the principal.
func (s *Service) Get(ctx context.Context, p Principal, id string) (*Assessment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != p.UserID {
		return nil, ErrForbidden
	}
	return a, nil
}

// List returns the principal's assessments, newest first.
func (s *Service) List(ctx context.Context, p Principal, f ListFilter) ([]Assessment, error) {
	f.UserID = p.UserID
	return s.repo.List(ctx, f)
}

// Start begins the timer of a pending assessment.
func (s *Service) Start(ctx context.Context, p Principal, id string) (*Assessment, error) {
	a, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if err := a.Start(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a, from); err != nil {
		return nil, err
	}
	s.record(ctx, a, analytics.KindStarted, nil)
	return a, nil
}

// Submit grades a submission and completes the assessment. A submission
// arriving after the time limit expires the assessment instead. A passed
// assessment verifies the skill on the principal's profile.
func (s *Service) Submit(ctx context.Context, p Principal, id string, sub Submission) (*Assessment, Result, error) {
	a, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, Result{}, err
	}
	if !a.Status.Open() {
		return nil, Result{}, &StateError{Op: "complete", From: a.Status}
	}

	now := s.now()
	if a.Overdue(now.Add(-s.cfg.SubmitGrace)) {
		if err := s.expire(ctx, a, now); err != nil {
			return nil, Result{}, err
		}
		return nil, Result{}, &StateError{Op: "complete", From: StatusExpired}
	}

	if a.Type == TypeCodingChallenge && len(sub.Code) > 0 {
		if s.grader == nil {
			return nil, Result{}, fmt.Errorf("%w: no code grader configured", ErrInvalidInput)
		}
		scores, err := s.grader.Grade(ctx, a.Challenge, a.SkillName, sub.Code)
		if err != nil {
			return nil, Result{}, fmt.Errorf("grade code: %w", err)
		}
		sub.Scores = scores
	}

	from := a.Status
	res, err := a.Complete(sub, now)
	if err != nil {
		return nil, Result{}, err
	}
	if err := s.repo.Update(ctx, a, from); err != nil {
		return nil, Result{}, err
	}

	log.Ctx(ctx).Info().
		Str("assessment_id", a.ID).
		Str("skill", a.SkillID).
		Str("user_id", a.UserID).
		Int("score", res.Score).
		Bool("passed", res.Passed).
		Msg("assessment completed")

	if res.Passed && s.profiles != nil {
		v := profile.Verification{
			SkillID:   a.SkillID,
			SkillName: a.SkillName,
			Level:     a.Level,
			Method:    profile.MethodAssessment,
			At:        now,
		}
		fallback.Do(ctx, "profile", func(ctx context.Context) error {
			return s.profiles.ApplyVerification(ctx, a.UserID, v)
		})
	}
	s.record(ctx, a, analytics.KindCompleted, &res)
	return a, res, nil
}

// Expire ends an open assessment without a score.
func (s *Service) Expire(ctx context.Context, p Principal, id string) (*Assessment, error) {
	a, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, a, s.now()); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) expire(ctx context.Context, a *Assessment, now time.Time) error {
	from := a.Status
	if err := a.Expire(now); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a, from); err != nil {
		return err
	}
	s.record(ctx, a, analytics.KindExpired, nil)
	return nil
}

// ExpireOverdue expires every in-progress assessment past its time limit
// and returns how many were expired. Records changed concurrently are
// skipped.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	open, err := s.repo.List(ctx, ListFilter{Status: StatusInProgress})
	if err != nil {
		return 0, fmt.Errorf("list in-progress assessments: %w", err)
	}
	now := s.now()
	n := 0
	for i := range open {
		a := &open[i]
		if !a.Overdue(now.Add(-s.cfg.SubmitGrace)) {
			continue
		}
		if err := s.expire(ctx, a, now); err != nil {
			if errors.Is(err, ErrInvalidState) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) record(ctx context.Context, a *Assessment, kind analytics.Kind, res *Result) {
	e := analytics.Event{
		Kind:      kind,
		SkillID:   a.SkillID,
		SkillName: a.SkillName,
		UserID:    a.UserID,
		Type:      string(a.Type),
		Level:     a.Level,
		At:        a.UpdatedAt,
	}
	if res != nil {
		e.Score = res.Score
		e.Passed = res.Passed
		e.TimeSpentSecs = a.TimeSpentSecs
	}
	fallback.Do(ctx, "analytics", func(ctx context.Context) error {
		return s.analytics.Record(ctx, e)
	})
}
