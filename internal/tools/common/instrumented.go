package common

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/server"
)

// ToolHandler is the signature of an MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// errToolResult stands in for tool results flagged IsError.
var errToolResult = errors.New("tool returned an error result")

// InstrumentedToolHandler wraps a tool handler with a trace span, metrics
// and audit logging. operation names the remote operation the tool drives.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", schedule.OpCalendarView, sc, handler))
func InstrumentedToolHandler(toolName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		account := GetAccountFromArgs(args)

		attrs := instrumentation.NewSpanAttributeBuilder().
			WithAccount(account).
			WithZone(StringArg(args, "zone")).
			Build()
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)

		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithAccount(account).
			WithBackend(sc.Config().Backend, operation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		spanErr := err
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			spanErr = errToolResult
			invocation.Complete(false, nil)
		default:
			invocation.CompleteSuccess()
		}
		instrumentation.EndSpan(span, spanErr)

		metrics.RecordToolInvocationWithAccount(ctx, toolName, status, instrumentation.ExtractUserDomain(account), duration)
		auditLogger.LogToolInvocation(invocation)

		return result, err
	}
}
