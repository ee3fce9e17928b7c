package analytics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exports lifecycle events as metrics.
type Prometheus struct {
	events    *prometheus.CounterVec
	outcomes  *prometheus.CounterVec
	scores    *prometheus.HistogramVec
	timeSpent *prometheus.HistogramVec
}

// NewPrometheus registers the assessment metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zirak",
			Name:      "assessment_events_total",
			Help:      "Assessment lifecycle events by kind, type and target level.",
		}, []string{"kind", "type", "level"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zirak",
			Name:      "assessment_outcomes_total",
			Help:      "Completed assessments by skill and result.",
		}, []string{"skill", "result"}),
		scores: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zirak",
			Name:      "assessment_score",
			Help:      "Distribution of assessment scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"type", "level"}),
		timeSpent: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zirak",
			Name:      "assessment_time_spent_seconds",
			Help:      "Time candidates spent before submitting.",
			Buckets:   []float64{60, 180, 300, 600, 900, 1200, 1500, 1800, 3600, 5400},
		}, []string{"type"}),
	}
}

func (p *Prometheus) Record(_ context.Context, e Event) error {
	p.events.WithLabelValues(string(e.Kind), e.Type, string(e.Level)).Inc()
	if e.Kind != KindCompleted {
		return nil
	}
	result := "failed"
	if e.Passed {
		result = "passed"
	}
	p.outcomes.WithLabelValues(e.SkillID, result).Inc()
	p.scores.WithLabelValues(e.Type, string(e.Level)).Observe(float64(e.Score))
	if e.TimeSpentSecs > 0 {
		p.timeSpent.WithLabelValues(e.Type).Observe(float64(e.TimeSpentSecs))
	}
	return nil
}
