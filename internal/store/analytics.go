package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/skills"
)

const (
	tableSkillStats      = "skill_stats"
	tableSkillLevelStats = "skill_level_stats"
)

var statsColumns = []string{
	"skill_id", "skill_name", "taken", "started", "completed",
	"passed", "failed", "expired", "verified", "score_sum", "time_sum",
}

// AnalyticsRepo implements analytics.Store with counter upserts.
type AnalyticsRepo struct {
	s *Store
}

var _ analytics.Store = (*AnalyticsRepo)(nil)

// Record adds the event's deltas to the skill's counters in one
// transaction.
func (r *AnalyticsRepo) Record(ctx context.Context, e analytics.Event) error {
	if e.SkillID == "" {
		return nil
	}
	var d analytics.SkillStats
	d.Apply(e)

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin analytics tx: %w", err)
	}
	defer tx.Rollback()

	counters := []struct {
		col string
		n   int64
	}{
		{"taken", d.Taken},
		{"started", d.Started},
		{"completed", d.Completed},
		{"passed", d.Passed},
		{"failed", d.Failed},
		{"expired", d.Expired},
		{"verified", d.Verified},
		{"score_sum", d.ScoreSum},
		{"time_sum", d.TimeSpentSum},
	}
	q, args := r.s.sql().Insert(tableSkillStats).
		Columns(statsColumns...).
		Values(e.SkillID, e.SkillName, d.Taken, d.Started, d.Completed,
			d.Passed, d.Failed, d.Expired, d.Verified, d.ScoreSum, d.TimeSpentSum).
		OnConflict(
			entsql.ConflictColumns("skill_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				if e.SkillName != "" {
					u.SetExcluded("skill_name")
				} else {
					u.SetIgnore("skill_name")
				}
				for _, c := range counters {
					if c.n != 0 {
						u.Add(c.col, c.n)
					}
				}
			}),
		).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert skill stats %s: %w", e.SkillID, err)
	}

	for lvl, n := range d.ByLevel {
		q, args := r.s.sql().Insert(tableSkillLevelStats).
			Columns("skill_id", "level", "count").
			Values(e.SkillID, string(lvl), n).
			OnConflict(
				entsql.ConflictColumns("skill_id", "level"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.Add("count", n)
				}),
			).
			Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert level stats %s/%s: %w", e.SkillID, lvl, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analytics tx: %w", err)
	}
	return nil
}

// SkillStats returns nil, nil when nothing was recorded for the skill.
func (r *AnalyticsRepo) SkillStats(ctx context.Context, skillID string) (*analytics.SkillStats, error) {
	list, err := r.load(ctx, skillID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

func (r *AnalyticsRepo) AllSkillStats(ctx context.Context) ([]analytics.SkillStats, error) {
	return r.load(ctx, "")
}

func (r *AnalyticsRepo) load(ctx context.Context, skillID string) ([]analytics.SkillStats, error) {
	sel := r.s.sql().Select(statsColumns...).
		From(entsql.Table(tableSkillStats)).
		OrderBy("skill_id")
	if skillID != "" {
		sel.Where(entsql.EQ("skill_id", skillID))
	}

	q, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query skill stats: %w", err)
	}
	defer rows.Close()

	var out []analytics.SkillStats
	index := make(map[string]int)
	for rows.Next() {
		var s analytics.SkillStats
		if err := rows.Scan(&s.SkillID, &s.SkillName, &s.Taken, &s.Started, &s.Completed,
			&s.Passed, &s.Failed, &s.Expired, &s.Verified, &s.ScoreSum, &s.TimeSpentSum); err != nil {
			return nil, fmt.Errorf("scan skill stats: %w", err)
		}
		index[s.SkillID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	if err := r.loadLevels(ctx, skillID, out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnalyticsRepo) loadLevels(ctx context.Context, skillID string, out []analytics.SkillStats, index map[string]int) error {
	sel := r.s.sql().Select("skill_id", "level", "count").From(entsql.Table(tableSkillLevelStats))
	if skillID != "" {
		sel.Where(entsql.EQ("skill_id", skillID))
	}

	q, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query level stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, lvl string
			n       int64
		)
		if err := rows.Scan(&id, &lvl, &n); err != nil {
			return fmt.Errorf("scan level stats: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if out[i].ByLevel == nil {
			out[i].ByLevel = make(map[skills.Level]int64)
		}
		out[i].ByLevel[skills.Level(lvl)] = n
	}
	return rows.Err()
}
