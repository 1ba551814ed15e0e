package observability

import (
	"context"
	"time"

	"resumelens/internal/ai"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder feeds analysis probe timings and token usage into the custom
// metrics. Satisfies the recorder interface the analysis package accepts.
type Recorder struct {
	metrics *Metrics
	manager *ObservabilityManager
}

// NewRecorder creates a probe metrics recorder bound to the manager's metrics
func NewRecorder(om *ObservabilityManager) *Recorder {
	return &Recorder{metrics: om.GetMetrics(), manager: om}
}

// RecordProbe records one probe call's duration and outcome
func (r *Recorder) RecordProbe(ctx context.Context, operation string, duration time.Duration, success bool) {
	if r.metrics == nil || !r.aiMetricsEnabled() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	if r.metrics.ProbeCount != nil {
		r.metrics.ProbeCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if r.metrics.ProbeDuration != nil && r.trackDuration() {
		r.metrics.ProbeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	if !success && r.metrics.ProbeErrors != nil {
		r.metrics.ProbeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordTokenUsage records token consumption for one completion call
func (r *Recorder) RecordTokenUsage(ctx context.Context, operation string, usage *ai.TokenUsage) {
	if r.metrics == nil || r.metrics.TokenUsage == nil || usage == nil {
		return
	}
	if !r.aiMetricsEnabled() || !r.trackTokenUsage() {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		r.metrics.TokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

func (r *Recorder) aiMetricsEnabled() bool {
	if r.manager == nil || r.manager.fullConfig == nil {
		return true
	}
	return r.manager.fullConfig.Observability.CustomMetrics.AIOperations.Enabled
}

func (r *Recorder) trackDuration() bool {
	if r.manager == nil || r.manager.fullConfig == nil {
		return true
	}
	return r.manager.fullConfig.Observability.CustomMetrics.AIOperations.TrackDuration
}

func (r *Recorder) trackTokenUsage() bool {
	if r.manager == nil || r.manager.fullConfig == nil {
		return true
	}
	return r.manager.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage
}
