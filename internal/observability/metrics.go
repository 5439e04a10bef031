package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages all metrics for the assistant.
type MetricsCollector struct {
	meter metric.Meter

	// LLM metrics
	llmRequests metric.Int64Counter
	llmLatency  metric.Float64Histogram

	// Tool metrics
	toolExecutions metric.Int64Counter
	toolDuration   metric.Float64Histogram

	// Pending-action lifecycle metrics
	actionsCreated  metric.Int64Counter
	actionsResolved metric.Int64Counter
	actionsExpired  metric.Int64Counter
	actionsPending  metric.Int64UpDownCounter

	enabled bool
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewMetricsCollector creates a new metrics collector backed by the
// Prometheus exporter. When disabled, all record methods are no-ops.
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("aria")
	mc := &MetricsCollector{meter: meter, enabled: true}

	if mc.llmRequests, err = meter.Int64Counter("aria_llm_requests_total",
		metric.WithDescription("Total LLM chat requests")); err != nil {
		return nil, err
	}
	if mc.llmLatency, err = meter.Float64Histogram("aria_llm_latency_seconds",
		metric.WithDescription("LLM request latency")); err != nil {
		return nil, err
	}
	if mc.toolExecutions, err = meter.Int64Counter("aria_tool_executions_total",
		metric.WithDescription("Total tool executions")); err != nil {
		return nil, err
	}
	if mc.toolDuration, err = meter.Float64Histogram("aria_tool_duration_seconds",
		metric.WithDescription("Tool execution duration")); err != nil {
		return nil, err
	}
	if mc.actionsCreated, err = meter.Int64Counter("aria_pending_actions_created_total",
		metric.WithDescription("Confirmation-gated actions proposed")); err != nil {
		return nil, err
	}
	if mc.actionsResolved, err = meter.Int64Counter("aria_pending_actions_resolved_total",
		metric.WithDescription("Confirmation-gated actions confirmed or cancelled")); err != nil {
		return nil, err
	}
	if mc.actionsExpired, err = meter.Int64Counter("aria_pending_actions_expired_total",
		metric.WithDescription("Confirmation-gated actions removed by expiry sweep")); err != nil {
		return nil, err
	}
	if mc.actionsPending, err = meter.Int64UpDownCounter("aria_pending_actions",
		metric.WithDescription("Pending actions awaiting confirmation")); err != nil {
		return nil, err
	}

	return mc, nil
}

// Handler returns the Prometheus scrape handler.
func (mc *MetricsCollector) Handler() http.Handler {
	return promclient.Handler()
}

// RecordLLMRequest records one chat-completion round trip.
func (mc *MetricsCollector) RecordLLMRequest(ctx context.Context, model string, duration time.Duration, err error) {
	if mc == nil || !mc.enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.Bool("error", err != nil),
	)
	mc.llmRequests.Add(ctx, 1, attrs)
	mc.llmLatency.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolExecution records one tool call.
func (mc *MetricsCollector) RecordToolExecution(ctx context.Context, tool string, duration time.Duration, err error) {
	if mc == nil || !mc.enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.Bool("error", err != nil),
	)
	mc.toolExecutions.Add(ctx, 1, attrs)
	mc.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordActionCreated records a newly proposed gated action.
func (mc *MetricsCollector) RecordActionCreated(ctx context.Context, kind string) {
	if mc == nil || !mc.enabled {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	mc.actionsCreated.Add(ctx, 1, attrs)
	mc.actionsPending.Add(ctx, 1, attrs)
}

// RecordActionResolved records a confirm or cancel outcome.
func (mc *MetricsCollector) RecordActionResolved(ctx context.Context, kind, outcome string) {
	if mc == nil || !mc.enabled {
		return
	}
	mc.actionsResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
	mc.actionsPending.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordActionsExpired records entries removed by the expiry sweep.
func (mc *MetricsCollector) RecordActionsExpired(ctx context.Context, count int) {
	if mc == nil || !mc.enabled || count <= 0 {
		return
	}
	mc.actionsExpired.Add(ctx, int64(count))
	mc.actionsPending.Add(ctx, -int64(count))
}
