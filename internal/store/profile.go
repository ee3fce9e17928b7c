package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/skills"
)

const tableProfileSkills = "profile_skills"

var profileColumns = []string{
	"user_id", "skill_id", "name", "proficiency",
	"verified", "verification_method", "verified_at", "updated_at",
}

// ProfileRepo implements profile.Repository.
type ProfileRepo struct {
	s *Store
}

var _ profile.Repository = (*ProfileRepo)(nil)

func (r *ProfileRepo) GetSkill(ctx context.Context, userID, skillID string) (*profile.SkillEntry, error) {
	q, args := r.s.sql().Select(profileColumns...).
		From(entsql.Table(tableProfileSkills)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("skill_id", skillID),
		)).
		Query()

	e, err := scanProfileSkill(r.s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile skill %s/%s: %w", userID, skillID, err)
	}
	return e, nil
}

func (r *ProfileRepo) UpsertSkill(ctx context.Context, userID string, e profile.SkillEntry) error {
	q, args := r.s.sql().Insert(tableProfileSkills).
		Columns(profileColumns...).
		Values(
			userID, e.SkillID, e.Name, string(e.Proficiency),
			boolInt(e.Verified), string(e.VerificationMethod), nullMillis(e.VerifiedAt), toMillis(e.UpdatedAt),
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "skill_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert profile skill %s/%s: %w", userID, e.SkillID, err)
	}
	return nil
}

func (r *ProfileRepo) ListSkills(ctx context.Context, userID string) ([]profile.SkillEntry, error) {
	q, args := r.s.sql().Select(profileColumns...).
		From(entsql.Table(tableProfileSkills)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("name", "skill_id").
		Query()

	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list profile skills: %w", err)
	}
	defer rows.Close()

	var out []profile.SkillEntry
	for rows.Next() {
		e, err := scanProfileSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile skill: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanProfileSkill(row scanner) (*profile.SkillEntry, error) {
	var (
		e                   profile.SkillEntry
		userID, level, meth string
		verified            int64
		verifiedAt          sql.NullInt64
		updatedAt           int64
	)
	if err := row.Scan(&userID, &e.SkillID, &e.Name, &level, &verified, &meth, &verifiedAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Proficiency = skills.Level(level)
	e.Verified = verified != 0
	e.VerificationMethod = profile.Method(meth)
	e.VerifiedAt = timePtr(verifiedAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return &e, nil
}
