package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	testAttendee = "jane@example.com"
	testTool     = "calendar_schedule_meeting"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testTool)

	if ti.Tool != testTool {
		t.Errorf("Tool = %q, want %q", ti.Tool, testTool)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testTool).CompleteWithError(errors.New("no free slot"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "no free slot" {
		t.Errorf("Error = %q, want %q", ti.Error, "no free slot")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	tests := []struct {
		name     string
		ti       *ToolInvocation
		wantKeys []string
		noKeys   []string
	}{
		{
			name:     "minimal",
			ti:       &ToolInvocation{Tool: testTool, Success: true},
			wantKeys: []string{"tool", "duration", "success"},
			noKeys:   []string{"account", "backend", "error", "trace_id"},
		},
		{
			name:     "default account is omitted",
			ti:       &ToolInvocation{Tool: testTool, Account: "default"},
			wantKeys: []string{"tool"},
			noKeys:   []string{"account"},
		},
		{
			name: "all fields",
			ti: &ToolInvocation{
				Tool:      testTool,
				Account:   "work",
				Backend:   BackendGraph,
				Operation: "create_event",
				TraceID:   "abc",
				SpanID:    "def",
				Error:     "boom",
			},
			wantKeys: []string{"account", "backend", "operation", "trace_id", "span_id", "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := make(map[string]bool)
			for _, a := range tt.ti.LogAttrs() {
				keys[a.Key] = true
			}
			for _, k := range tt.wantKeys {
				if !keys[k] {
					t.Errorf("missing attribute %q", k)
				}
			}
			for _, k := range tt.noKeys {
				if keys[k] {
					t.Errorf("unexpected attribute %q", k)
				}
			}
		})
	}
}

func TestWriteRecord_Builder(t *testing.T) {
	r := NewWriteRecord("create_event", BackendGraph).
		WithSpanContext(context.Background()).
		WithEvent("Planning", "2024-03-11T10:00:00", "Eastern", []string{testAttendee})

	if r.Operation != "create_event" || r.Backend != BackendGraph {
		t.Errorf("unexpected record header: %+v", r)
	}
	if r.TraceID != "" {
		t.Errorf("expected no trace ID without a span, got %q", r.TraceID)
	}

	r.Fail(errors.New("403 forbidden"))
	if r.Success || r.Error != "403 forbidden" {
		t.Errorf("Fail did not mark the record: %+v", r)
	}

	r.Succeed()
	if !r.Success || r.Error != "" {
		t.Errorf("Succeed did not mark the record: %+v", r)
	}
}

func decodeLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestAuditLogger_LogWrite(t *testing.T) {
	tests := []struct {
		name        string
		includePII  bool
		success     bool
		wantMsg     string
		wantSubject bool
	}{
		{name: "anonymized success", success: true, wantMsg: "calendar_write"},
		{name: "anonymized failure", success: false, wantMsg: "calendar_write_failed"},
		{name: "with PII", includePII: true, success: true, wantMsg: "calendar_write", wantSubject: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{
				Enabled:    true,
				IncludePII: tt.includePII,
			})

			r := NewWriteRecord("create_event", BackendGoogle).
				WithEvent("Planning", "2024-03-11T10:00:00", "Europe/Berlin", []string{testAttendee})
			if tt.success {
				r.Succeed()
			} else {
				r.Fail(errors.New("rejected"))
			}
			al.LogWrite(r)

			entry := decodeLog(t, &buf)
			if entry["msg"] != tt.wantMsg {
				t.Errorf("msg = %v, want %q", entry["msg"], tt.wantMsg)
			}
			if entry["component"] != "audit" {
				t.Errorf("component = %v, want audit", entry["component"])
			}

			_, hasSubject := entry["subject"]
			if hasSubject != tt.wantSubject {
				t.Errorf("subject logged = %v, want %v", hasSubject, tt.wantSubject)
			}

			leaked := strings.Contains(buf.String(), testAttendee)
			if leaked != tt.includePII {
				t.Errorf("attendee address in clear = %v, want %v", leaked, tt.includePII)
			}
		})
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogWrite(NewWriteRecord("create_event", BackendGraph).Succeed())
	al.LogToolInvocation(NewToolInvocation(testTool).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output from a disabled audit logger, got %q", buf.String())
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogToolInvocation(NewToolInvocation(testTool).WithAccount("work").CompleteWithError(errors.New("boom")))

	entry := decodeLog(t, &buf)
	if entry["msg"] != "tool_failed" {
		t.Errorf("msg = %v, want tool_failed", entry["msg"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["account"] != "work" {
		t.Errorf("account = %v, want work", entry["account"])
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger

	// Should not panic
	al.LogWrite(NewWriteRecord("create_event", BackendGraph))
	al.LogToolInvocation(NewToolInvocation(testTool))
}
