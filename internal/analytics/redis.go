package analytics

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/zirakhr/zirak/internal/skills"
)

const (
	redisSkillKey = "zirak:analytics:skill:"
	redisIndexKey = "zirak:analytics:skills"
)

const (
	fieldName      = "name"
	fieldTaken     = "taken"
	fieldStarted   = "started"
	fieldCompleted = "completed"
	fieldPassed    = "passed"
	fieldFailed    = "failed"
	fieldExpired   = "expired"
	fieldVerified  = "verified"
	fieldScoreSum  = "score_sum"
	fieldTimeSum   = "time_sum"
	fieldLevelPfx  = "level:"
)

// Redis keeps per-skill counters in one hash per skill.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Record(ctx context.Context, e Event) error {
	if e.SkillID == "" {
		return nil
	}
	key := redisSkillKey + e.SkillID
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, redisIndexKey, e.SkillID)
		if e.SkillName != "" {
			p.HSet(ctx, key, fieldName, e.SkillName)
		}
		switch e.Kind {
		case KindCreated:
			p.HIncrBy(ctx, key, fieldTaken, 1)
			p.HIncrBy(ctx, key, fieldLevelPfx+string(e.Level), 1)
		case KindStarted:
			p.HIncrBy(ctx, key, fieldStarted, 1)
		case KindCompleted:
			p.HIncrBy(ctx, key, fieldCompleted, 1)
			p.HIncrBy(ctx, key, fieldScoreSum, int64(e.Score))
			p.HIncrBy(ctx, key, fieldTimeSum, int64(e.TimeSpentSecs))
			if e.Passed {
				p.HIncrBy(ctx, key, fieldPassed, 1)
				p.HIncrBy(ctx, key, fieldVerified, 1)
			} else {
				p.HIncrBy(ctx, key, fieldFailed, 1)
			}
		case KindExpired:
			p.HIncrBy(ctx, key, fieldExpired, 1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis analytics %s: %w", e.SkillID, err)
	}
	return nil
}

// SkillStats returns nil, nil when nothing was recorded for the skill.
func (r *Redis) SkillStats(ctx context.Context, skillID string) (*SkillStats, error) {
	h, err := r.rdb.HGetAll(ctx, redisSkillKey+skillID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis analytics %s: %w", skillID, err)
	}
	if len(h) == 0 {
		return nil, nil
	}
	return parseStatsHash(skillID, h), nil
}

func (r *Redis) AllSkillStats(ctx context.Context) ([]SkillStats, error) {
	ids, err := r.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis analytics index: %w", err)
	}
	sort.Strings(ids)

	out := make([]SkillStats, 0, len(ids))
	for _, id := range ids {
		s, err := r.SkillStats(ctx, id)
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func parseStatsHash(skillID string, h map[string]string) *SkillStats {
	num := func(f string) int64 {
		n, _ := strconv.ParseInt(h[f], 10, 64)
		return n
	}
	s := &SkillStats{
		SkillID:      skillID,
		SkillName:    h[fieldName],
		Taken:        num(fieldTaken),
		Started:      num(fieldStarted),
		Completed:    num(fieldCompleted),
		Passed:       num(fieldPassed),
		Failed:       num(fieldFailed),
		Expired:      num(fieldExpired),
		Verified:     num(fieldVerified),
		ScoreSum:     num(fieldScoreSum),
		TimeSpentSum: num(fieldTimeSum),
	}
	for f := range h {
		lvl, ok := strings.CutPrefix(f, fieldLevelPfx)
		if !ok {
			continue
		}
		if s.ByLevel == nil {
			s.ByLevel = make(map[skills.Level]int64)
		}
		s.ByLevel[skills.Level(lvl)] = num(f)
	}
	return s
}
