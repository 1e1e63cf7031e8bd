// Package resources provides MCP resources for the week planner. Resources
// are read-only data sources that MCP clients can fetch without calling a
// tool: the effective planner settings and the current week.
package resources
