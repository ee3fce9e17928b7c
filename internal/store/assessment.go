package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/skills"
)

const tableAssessments = "assessments"

var assessmentColumns = []string{
	"id", "user_id", "skill_id", "skill_name", "type", "level",
	"title", "description", "questions", "challenge",
	"status", "score", "passing_score", "passed", "feedback",
	"time_limit_mins", "time_spent_secs",
	"started_at", "completed_at", "created_at", "updated_at",
}

// AssessmentRepo implements assessment.Repository.
type AssessmentRepo struct {
	s *Store
}

var _ assessment.Repository = (*AssessmentRepo)(nil)

func (r *AssessmentRepo) Create(ctx context.Context, a *assessment.Assessment) error {
	questions, challenge, err := encodeContent(a)
	if err != nil {
		return err
	}

	q, args := r.s.sql().Insert(tableAssessments).
		Columns(assessmentColumns...).
		Values(
			a.ID, a.UserID, a.SkillID, a.SkillName, string(a.Type), string(a.Level),
			a.Title, a.Description, questions, challenge,
			string(a.Status), nullInt(a.Score), a.PassingScore, nullBool(a.Passed), a.Feedback,
			a.TimeLimitMins, a.TimeSpentSecs,
			nullMillis(a.StartedAt), nullMillis(a.CompletedAt), toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
		).
		Query()
	if _, err := r.s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (r *AssessmentRepo) Get(ctx context.Context, id string) (*assessment.Assessment, error) {
	q, args := r.selectAll().Where(entsql.EQ("id", id)).Query()
	a, err := scanAssessment(r.s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assessment %s: %w", id, assessment.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	return a, nil
}

func (r *AssessmentRepo) List(ctx context.Context, f assessment.ListFilter) ([]assessment.Assessment, error) {
	var preds []*entsql.Predicate
	if f.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", f.UserID))
	}
	if f.SkillID != "" {
		preds = append(preds, entsql.EQ("skill_id", f.SkillID))
	}
	if f.Status != "" {
		preds = append(preds, entsql.EQ("status", string(f.Status)))
	}
	return r.query(ctx, preds, []string{entsql.Desc("created_at"), entsql.Desc("id")}, f.Limit)
}

func (r *AssessmentRepo) FindPending(ctx context.Context, userID, skillID string) (*assessment.Assessment, error) {
	list, err := r.List(ctx, assessment.ListFilter{
		UserID:  userID,
		SkillID: skillID,
		Status:  assessment.StatusPending,
		Limit:   1,
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r *AssessmentRepo) LatestCompleted(ctx context.Context, userID, skillID string) (*assessment.Assessment, error) {
	list, err := r.query(ctx,
		[]*entsql.Predicate{
			entsql.EQ("user_id", userID),
			entsql.EQ("skill_id", skillID),
			entsql.EQ("status", string(assessment.StatusCompleted)),
		},
		[]string{entsql.Desc("completed_at"), entsql.Desc("id")},
		1,
	)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

// Update writes every mutable column of a, guarded by the stored status.
func (r *AssessmentRepo) Update(ctx context.Context, a *assessment.Assessment, from assessment.Status) error {
	questions, challenge, err := encodeContent(a)
	if err != nil {
		return err
	}

	q, args := r.s.sql().Update(tableAssessments).
		Set("title", a.Title).
		Set("description", a.Description).
		Set("questions", questions).
		Set("challenge", challenge).
		Set("status", string(a.Status)).
		Set("score", nullInt(a.Score)).
		Set("passing_score", a.PassingScore).
		Set("passed", nullBool(a.Passed)).
		Set("feedback", a.Feedback).
		Set("time_limit_mins", a.TimeLimitMins).
		Set("time_spent_secs", a.TimeSpentSecs).
		Set("started_at", nullMillis(a.StartedAt)).
		Set("completed_at", nullMillis(a.CompletedAt)).
		Set("updated_at", toMillis(a.UpdatedAt)).
		Where(entsql.And(
			entsql.EQ("id", a.ID),
			entsql.EQ("status", string(from)),
		)).
		Query()

	res, err := r.s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: either the row is gone or another writer moved it.
	cur, err := r.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	return &assessment.StateError{Op: "update", From: cur.Status}
}

func (r *AssessmentRepo) selectAll() *entsql.Selector {
	return r.s.sql().Select(assessmentColumns...).From(entsql.Table(tableAssessments))
}

func (r *AssessmentRepo) query(ctx context.Context, preds []*entsql.Predicate, order []string, limit int) ([]assessment.Assessment, error) {
	sel := r.selectAll().OrderBy(order...)
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	q, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []assessment.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAssessment(row scanner) (*assessment.Assessment, error) {
	var (
		a                   assessment.Assessment
		typ, level, status  string
		questions           string
		challenge           sql.NullString
		score, passed       sql.NullInt64
		startedAt, doneAt   sql.NullInt64
		createdAt, updateAt int64
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.SkillID, &a.SkillName, &typ, &level,
		&a.Title, &a.Description, &questions, &challenge,
		&status, &score, &a.PassingScore, &passed, &a.Feedback,
		&a.TimeLimitMins, &a.TimeSpentSecs,
		&startedAt, &doneAt, &createdAt, &updateAt,
	)
	if err != nil {
		return nil, err
	}

	a.Type = assessment.Type(typ)
	a.Level = skills.Level(level)
	a.Status = assessment.Status(status)
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	if passed.Valid {
		v := passed.Int64 != 0
		a.Passed = &v
	}
	a.StartedAt = timePtr(startedAt)
	a.CompletedAt = timePtr(doneAt)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updateAt)

	if questions != "" {
		var qs []questionbank.Question
		if err := json.Unmarshal([]byte(questions), &qs); err != nil {
			return nil, fmt.Errorf("decode questions of %s: %w", a.ID, err)
		}
		if len(qs) > 0 {
			a.Questions = qs
		}
	}
	if challenge.Valid && challenge.String != "" {
		var c assessment.CodingChallenge
		if err := json.Unmarshal([]byte(challenge.String), &c); err != nil {
			return nil, fmt.Errorf("decode challenge of %s: %w", a.ID, err)
		}
		a.Challenge = &c
	}
	return &a, nil
}

func encodeContent(a *assessment.Assessment) (string, sql.NullString, error) {
	qs := a.Questions
	if qs == nil {
		qs = []questionbank.Question{}
	}
	questions, err := json.Marshal(qs)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode questions of %s: %w", a.ID, err)
	}
	if a.Challenge == nil {
		return string(questions), sql.NullString{}, nil
	}
	challenge, err := json.Marshal(a.Challenge)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode challenge of %s: %w", a.ID, err)
	}
	return string(questions), sql.NullString{String: string(challenge), Valid: true}, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: boolInt(*v), Valid: true}
}
