// Package server holds the shared state of the MCP server and its HTTP
// surfaces.
//
// ServerContext creates one schedule.Planner per account on first use, from
// a BackendFactory that builds the configured Microsoft Graph or Google
// Calendar client. Instrumentation sinks set on the context are handed to
// every planner.
//
// HTTPServer serves the MCP server over streamable HTTP (or SSE) with
// optional request rate limiting. MetricsServer exposes the Prometheus
// registry of the instrumentation provider on its own port, next to the
// Kubernetes health endpoints provided by HealthChecker.
package server
