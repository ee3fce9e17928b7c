package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/zirakhr/zirak/internal/llm"
)

const tableLLMEvents = "llm_request_events"

var llmEventColumns = []string{
	"id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "cost_usd",
	"success", "error_message", "request_body", "response_body", "created_at",
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID string
	llm.RequestEvent
}

// EventRepo records and reads LLM request events. It implements
// llm.EventRecorder.
type EventRepo struct {
	s *Store
}

var _ llm.EventRecorder = (*EventRepo)(nil)

func (r *EventRepo) AppendLLMRequest(ctx context.Context, e llm.RequestEvent) error {
	q, args := r.s.sql().Insert(tableLLMEvents).
		Columns(llmEventColumns...).
		Values(
			uuid.NewString(), e.Provider, e.Model, e.Purpose,
			e.InputTokens, e.OutputTokens, e.LatencyMs, e.CostUSD,
			boolInt(e.Success), e.ErrorMessage, e.RequestBody, e.ResponseBody, toMillis(e.At),
		).
		Query()
	if _, err := r.s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// List returns events newest first.
func (r *EventRepo) List(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", toMillis(opts.To)))
	}

	sel := r.s.sql().Select(llmEventColumns...).
		From(entsql.Table(tableLLMEvents)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	q, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Get returns a single event. A missing id yields ErrEventNotFound.
func (r *EventRepo) Get(ctx context.Context, id string) (*LLMEvent, error) {
	q, args := r.s.sql().Select(llmEventColumns...).
		From(entsql.Table(tableLLMEvents)).
		Where(entsql.EQ("id", id)).
		Query()
	e, err := scanLLMEvent(r.s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LLM event %s: %w", id, ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %s: %w", id, err)
	}
	return e, nil
}

// ErrEventNotFound is returned by EventRepo.Get.
var ErrEventNotFound = errors.New("event not found")

func scanLLMEvent(row scanner) (*LLMEvent, error) {
	var (
		e         LLMEvent
		success   int64
		createdAt int64
	)
	err := row.Scan(
		&e.ID, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.CostUSD,
		&success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	e.Success = success != 0
	e.At = fromMillis(createdAt)
	return &e, nil
}

// Usage is aggregated LLM usage for one purpose or model.
type Usage struct {
	Key          string
	Calls        int64
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
	AvgLatencyMs float64
}

// UsageByPurpose aggregates events per purpose.
func (r *EventRepo) UsageByPurpose(ctx context.Context) ([]Usage, error) {
	return r.usage(ctx, "purpose")
}

// UsageByModel aggregates events per model.
func (r *EventRepo) UsageByModel(ctx context.Context) ([]Usage, error) {
	return r.usage(ctx, "model")
}

func (r *EventRepo) usage(ctx context.Context, key string) ([]Usage, error) {
	q, args := r.s.sql().Select(
		key,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Sum("cost_usd"), "cost_usd"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
	).
		From(entsql.Table(tableLLMEvents)).
		GroupBy(key).
		OrderBy(key).
		Query()

	rows, err := r.s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", key, err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.CostUSD, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
