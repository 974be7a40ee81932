package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records operation counts and latencies per domain.
// Domains are "auth", "audit", and "finance"; status is "success" or "error".
type BusinessMetrics interface {
	// RecordOperation counts one completed operation.
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// SecurityMetrics records security-relevant occurrences that feed alerting:
// rate limit rejections and audit events lost to backpressure.
type SecurityMetrics interface {
	// RecordRateLimitHit counts one rejected request for a route class.
	RecordRateLimitHit(ctx context.Context, class string)

	// RecordAuditDrop counts one audit event discarded because the queue
	// was full.
	RecordAuditDrop(ctx context.Context)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
}

// NewBusinessMetrics creates a BusinessMetrics backed by the given meter
// provider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

type securityMetrics struct {
	rateLimitCounter metric.Int64Counter
	auditDropCounter metric.Int64Counter
}

// NewSecurityMetrics creates a SecurityMetrics backed by the given meter
// provider.
func NewSecurityMetrics(meterProvider metric.MeterProvider, namespace string) (SecurityMetrics, error) {
	meter := meterProvider.Meter(namespace)

	rateLimitCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_rate_limit_rejections_total", namespace),
		metric.WithDescription("Total number of requests rejected by rate limiting"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit counter: %w", err)
	}

	auditDropCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_audit_events_dropped_total", namespace),
		metric.WithDescription("Total number of audit events dropped under backpressure"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit drop counter: %w", err)
	}

	return &securityMetrics{
		rateLimitCounter: rateLimitCounter,
		auditDropCounter: auditDropCounter,
	}, nil
}

func (s *securityMetrics) RecordRateLimitHit(ctx context.Context, class string) {
	s.rateLimitCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("class", class)),
	)
}

func (s *securityMetrics) RecordAuditDrop(ctx context.Context) {
	s.auditDropCounter.Add(ctx, 1)
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

// RecordOperation does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
}

// RecordDuration does nothing when metrics are disabled.
func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

// NoOpSecurityMetrics is used when metrics are disabled.
type NoOpSecurityMetrics struct{}

// NewNoOpSecurityMetrics creates a no-op SecurityMetrics implementation.
func NewNoOpSecurityMetrics() SecurityMetrics {
	return &NoOpSecurityMetrics{}
}

// RecordRateLimitHit does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordRateLimitHit(ctx context.Context, class string) {}

// RecordAuditDrop does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordAuditDrop(ctx context.Context) {}
