package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrBackend   = "backend"
	attrZone      = "zone"
	attrPolicy    = "policy"
	attrOutcome   = "outcome"
	attrTool      = "tool"
	attrAccount   = "account"
)

var remoteBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}

// Metrics provides methods for recording observability metrics.
// The zero value records nothing.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Remote calendar metrics
	remoteOperationsTotal   metric.Int64Counter
	remoteOperationDuration metric.Float64Histogram
	pagesFetchedTotal       metric.Int64Counter
	pagesPerView            metric.Int64Histogram

	// Scheduling metrics
	slotResolutionsTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.remoteOperationsTotal, err = meter.Int64Counter(
		"remote_calendar_operations_total",
		metric.WithDescription("Total number of remote calendar operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote_calendar_operations_total counter: %w", err)
	}

	m.remoteOperationDuration, err = meter.Float64Histogram(
		"remote_calendar_operation_duration_seconds",
		metric.WithDescription("Remote calendar operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(remoteBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote_calendar_operation_duration_seconds histogram: %w", err)
	}

	m.pagesFetchedTotal, err = meter.Int64Counter(
		"calendar_pages_fetched_total",
		metric.WithDescription("Total number of calendar view pages fetched"),
		metric.WithUnit("{page}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_pages_fetched_total counter: %w", err)
	}

	m.pagesPerView, err = meter.Int64Histogram(
		"calendar_pages_per_view",
		metric.WithDescription("Number of pages needed to collect one week view"),
		metric.WithUnit("{page}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 20),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_pages_per_view histogram: %w", err)
	}

	m.slotResolutionsTotal, err = meter.Int64Counter(
		"slot_resolutions_total",
		metric.WithDescription("Total number of meeting slot resolutions by policy and outcome"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create slot_resolutions_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(remoteBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)

	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRemoteOperation records one call to a remote calendar backend.
//
// Parameters:
//   - backend: "graph" or "google"
//   - operation: calendar_view, get_schedule, create_event, find_meeting_times
//   - status: "success" or "error"
//   - zone: timezone of the request, only used when detailed labels are on
func (m *Metrics) RecordRemoteOperation(ctx context.Context, backend, operation, status, zone string, duration time.Duration) {
	if m == nil || m.remoteOperationsTotal == nil || m.remoteOperationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrBackend, backend),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && zone != "" {
		attrs = append(attrs, attribute.String(attrZone, zone))
	}

	m.remoteOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.remoteOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPagesFetched records how many pages one week view needed.
func (m *Metrics) RecordPagesFetched(ctx context.Context, backend string, pages int) {
	if m == nil || m.pagesFetchedTotal == nil || m.pagesPerView == nil || pages <= 0 {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrBackend, backend))
	m.pagesFetchedTotal.Add(ctx, int64(pages), attrs)
	m.pagesPerView.Record(ctx, int64(pages), attrs)
}

// RecordSlotResolution records the outcome of a slot resolution.
// Outcome should be one of the SlotOutcome constants.
func (m *Metrics) RecordSlotResolution(ctx context.Context, policy, outcome string) {
	if m == nil || m.slotResolutionsTotal == nil {
		return
	}

	m.slotResolutionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrPolicy, policy),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.RecordToolInvocationWithAccount(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount records an MCP tool invocation with account info.
// The account label is only added when detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
