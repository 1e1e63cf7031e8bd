package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/weekplanner/internal/logging"
)

// ToolInvocation captures one MCP tool call for audit logging.
type ToolInvocation struct {
	Tool    string
	Account string

	// Backend and Operation name the remote call the tool ended in, if any.
	Backend   string
	Operation string

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// Status returns "success" or "error" based on the Success field.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for structured logging.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	}

	if ti.Account != "" && ti.Account != "default" {
		attrs = append(attrs, slog.String("account", ti.Account))
	}
	if ti.Backend != "" {
		attrs = append(attrs, slog.String("backend", ti.Backend))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// NewToolInvocation creates a new ToolInvocation with timing started.
// Call Complete when the tool finishes.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// WithAccount sets the account name.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithBackend sets the backend and the remote operation.
func (ti *ToolInvocation) WithBackend(backend, operation string) *ToolInvocation {
	ti.Backend = backend
	ti.Operation = operation
	return ti
}

// WithSpanContext extracts trace context from the current span.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID, ti.SpanID = spanIDs(ctx)
	return ti
}

// Complete marks the invocation as completed and calculates duration.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed with the given error.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// WriteRecord describes one write against a remote calendar, such as an
// event creation.
type WriteRecord struct {
	Operation string
	Backend   string

	Subject   string
	Start     string
	Zone      string
	Attendees []string

	Duration time.Duration
	Success  bool
	Error    string

	TraceID string
	SpanID  string
}

// NewWriteRecord starts a record for operation on backend.
func NewWriteRecord(operation, backend string) *WriteRecord {
	return &WriteRecord{Operation: operation, Backend: backend}
}

// WithSpanContext extracts trace context from the current span.
func (r *WriteRecord) WithSpanContext(ctx context.Context) *WriteRecord {
	r.TraceID, r.SpanID = spanIDs(ctx)
	return r
}

// WithEvent sets the event details of the write.
func (r *WriteRecord) WithEvent(subject, start, zone string, attendees []string) *WriteRecord {
	r.Subject = subject
	r.Start = start
	r.Zone = zone
	r.Attendees = attendees
	return r
}

// Succeed marks the write as accepted by the remote store.
func (r *WriteRecord) Succeed() *WriteRecord {
	r.Success = true
	r.Error = ""
	return r
}

// Fail marks the write as rejected.
func (r *WriteRecord) Fail(err error) *WriteRecord {
	r.Success = false
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// LogAttrs returns slog attributes for the record. Attendee addresses are
// hashed unless includePII is set. The subject is only logged with PII.
func (r *WriteRecord) LogAttrs(includePII bool) []slog.Attr {
	attendees := r.Attendees
	if !includePII {
		attendees = logging.AnonymizeEmails(r.Attendees)
	}

	attrs := []slog.Attr{
		slog.String("operation", r.Operation),
		slog.String("backend", r.Backend),
		slog.String("start", r.Start),
		slog.String("zone", r.Zone),
		slog.Any("attendees", attendees),
		slog.Duration("duration", r.Duration),
		slog.Bool("success", r.Success),
	}
	if includePII && r.Subject != "" {
		attrs = append(attrs, slog.String("subject", r.Subject))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}
	return attrs
}

// AuditLogger provides structured audit logging for tool invocations and
// calendar writes.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that hashes PII.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs a tool invocation.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	if ti.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "tool_executed", ti.LogAttrs()...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "tool_failed", ti.LogAttrs()...)
	}
}

// LogWrite logs a calendar write.
func (al *AuditLogger) LogWrite(r *WriteRecord) {
	if al == nil || !al.enabled {
		return
	}

	if r.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "calendar_write", r.LogAttrs(al.includePII)...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "calendar_write_failed", r.LogAttrs(al.includePII)...)
	}
}

func spanIDs(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
