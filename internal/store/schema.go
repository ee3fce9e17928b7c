package store

import (
	"context"
	"fmt"
)

// schema is applied in order on every Open. Statements must be idempotent
// and valid on both SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS assessments (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		skill_id        TEXT NOT NULL,
		skill_name      TEXT NOT NULL,
		type            TEXT NOT NULL,
		level           TEXT NOT NULL,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		questions       TEXT NOT NULL DEFAULT '[]',
		challenge       TEXT,
		status          TEXT NOT NULL,
		score           INTEGER,
		passing_score   INTEGER NOT NULL,
		passed          INTEGER,
		feedback        TEXT NOT NULL DEFAULT '',
		time_limit_mins INTEGER NOT NULL DEFAULT 0,
		time_spent_secs INTEGER NOT NULL DEFAULT 0,
		started_at      BIGINT,
		completed_at    BIGINT,
		created_at      BIGINT NOT NULL,
		updated_at      BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS assessments_user_skill ON assessments (user_id, skill_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS assessments_status ON assessments (status)`,

	`CREATE TABLE IF NOT EXISTS profile_skills (
		user_id             TEXT NOT NULL,
		skill_id            TEXT NOT NULL,
		name                TEXT NOT NULL,
		proficiency         TEXT NOT NULL,
		verified            INTEGER NOT NULL DEFAULT 0,
		verification_method TEXT NOT NULL DEFAULT '',
		verified_at         BIGINT,
		updated_at          BIGINT NOT NULL,
		PRIMARY KEY (user_id, skill_id)
	)`,

	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            TEXT PRIMARY KEY,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    BIGINT NOT NULL DEFAULT 0,
		cost_usd      DOUBLE PRECISION NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT '',
		created_at    BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_created ON llm_request_events (created_at)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,

	`CREATE TABLE IF NOT EXISTS skill_stats (
		skill_id   TEXT PRIMARY KEY,
		skill_name TEXT NOT NULL DEFAULT '',
		taken      BIGINT NOT NULL DEFAULT 0,
		started    BIGINT NOT NULL DEFAULT 0,
		completed  BIGINT NOT NULL DEFAULT 0,
		passed     BIGINT NOT NULL DEFAULT 0,
		failed     BIGINT NOT NULL DEFAULT 0,
		expired    BIGINT NOT NULL DEFAULT 0,
		verified   BIGINT NOT NULL DEFAULT 0,
		score_sum  BIGINT NOT NULL DEFAULT 0,
		time_sum   BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS skill_level_stats (
		skill_id TEXT NOT NULL,
		level    TEXT NOT NULL,
		count    BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (skill_id, level)
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
