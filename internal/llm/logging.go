package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RequestEvent is the audit record of one LLM call.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	CostUSD      float64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	At           time.Time
}

// EventRecorder persists RequestEvents.
type EventRecorder interface {
	AppendLLMRequest(ctx context.Context, e RequestEvent) error
}

// LoggingProvider is a decorator that logs every LLM request and records
// it as an event.
type LoggingProvider struct {
	inner    Provider
	recorder EventRecorder
}

// WithLogging wraps a Provider with event logging. rec may be nil.
func WithLogging(p Provider, rec EventRecorder) Provider {
	return &LoggingProvider{inner: p, recorder: rec}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	e := RequestEvent{
		Provider:    l.inner.Name(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
		At:          start,
	}
	if resp != nil {
		e.InputTokens = resp.Usage.InputTokens
		e.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			e.Model = resp.Model
		}
		e.ResponseBody = string(resp.Content)
	}
	if c := LookupCost(e.Model); c != nil {
		e.CostUSD = c.Cost(e.InputTokens, e.OutputTokens)
	}

	ev := log.Ctx(ctx).Debug()
	if err != nil {
		e.ErrorMessage = err.Error()
		ev = log.Ctx(ctx).Warn().Err(err)
	}
	ev.Str("provider", e.Provider).
		Str("model", e.Model).
		Str("purpose", purpose).
		Int64("latency_ms", e.LatencyMs).
		Int("input_tokens", e.InputTokens).
		Int("output_tokens", e.OutputTokens).
		Msg("llm request")

	if l.recorder != nil {
		if recErr := l.recorder.AppendLLMRequest(ctx, e); recErr != nil {
			log.Ctx(ctx).Warn().Err(recErr).Msg("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) Name() string {
	return l.inner.Name()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
