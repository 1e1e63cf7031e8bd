// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the weekplanner server.
//
// # Metrics
//
// Remote calendar metrics:
//   - remote_calendar_operations_total: Counter by backend, operation and status
//   - remote_calendar_operation_duration_seconds: Histogram of remote call durations
//   - calendar_pages_fetched_total: Counter of calendar view pages by backend
//   - calendar_pages_per_view: Histogram of pages needed per week view
//
// Scheduling metrics:
//   - slot_resolutions_total: Counter by slot policy and outcome
//
// Server metrics:
//   - http_requests_total, http_request_duration_seconds
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//
// The zone label on remote operations and the account label on tool
// invocations are only added when DetailedLabels is set.
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and for each
// remote calendar call (calendar.<backend>.<operation>).
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: weekplanner)
//   - METRICS_DETAILED_LABELS: Add zone and account labels (default: false)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordRemoteOperation(ctx, instrumentation.BackendGraph,
//		"calendar_view", instrumentation.StatusSuccess, zone, time.Since(start))
package instrumentation
