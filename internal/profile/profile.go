// Package profile keeps the skill entries shown on a candidate's profile.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/zirakhr/zirak/internal/skills"
)

// Method is how a skill was verified.
type Method string

const (
	MethodAssessment  Method = "assessment"
	MethodEndorsement Method = "endorsement"
	MethodExperience  Method = "experience"
)

// SkillEntry is one skill on a user's profile.
type SkillEntry struct {
	SkillID            string       `json:"skillId"`
	Name               string       `json:"name"`
	Proficiency        skills.Level `json:"proficiency"`
	Verified           bool         `json:"verified"`
	VerificationMethod Method       `json:"verificationMethod,omitempty"`
	VerifiedAt         *time.Time   `json:"verificationDate,omitempty"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Verification is proof that a user holds a skill at a level.
type Verification struct {
	SkillID   string
	SkillName string
	Level     skills.Level
	Method    Method
	At        time.Time
}

// Apply returns entry updated with v. A nil entry creates a new one at
// v.Level. An existing proficiency is raised to v.Level but never lowered.
func Apply(entry *SkillEntry, v Verification) SkillEntry {
	var e SkillEntry
	if entry != nil {
		e = *entry
		e.Proficiency = skills.Max(e.Proficiency, v.Level)
	} else {
		e = SkillEntry{SkillID: v.SkillID, Name: v.SkillName, Proficiency: v.Level}
	}
	if e.Name == "" {
		e.Name = v.SkillName
	}

	at := v.At
	e.Verified = true
	e.VerificationMethod = v.Method
	e.VerifiedAt = &at
	e.UpdatedAt = v.At
	return e
}

// Repository stores profile skill entries per user.
type Repository interface {
	// GetSkill returns the entry or nil if the user has no such skill.
	GetSkill(ctx context.Context, userID, skillID string) (*SkillEntry, error)
	UpsertSkill(ctx context.Context, userID string, e SkillEntry) error
	ListSkills(ctx context.Context, userID string) ([]SkillEntry, error)
}

// Service applies verifications to stored profiles.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ApplyVerification marks the user's skill as verified, adding the skill
// when missing.
func (s *Service) ApplyVerification(ctx context.Context, userID string, v Verification) error {
	cur, err := s.repo.GetSkill(ctx, userID, v.SkillID)
	if err != nil {
		return fmt.Errorf("load profile skill: %w", err)
	}
	next := Apply(cur, v)
	if err := s.repo.UpsertSkill(ctx, userID, next); err != nil {
		return fmt.Errorf("save profile skill: %w", err)
	}
	return nil
}

// Skills lists the user's profile skills.
func (s *Service) Skills(ctx context.Context, userID string) ([]SkillEntry, error) {
	return s.repo.ListSkills(ctx, userID)
}
