// Package cmd implements the command-line interface for weekplanner.
//
// This package provides the following commands:
//   - week: Print the events of one week as a table, JSON or iCalendar
//   - schedule: Place a meeting in the first free slot of a window
//   - suggest: Ask the calendar service for meeting time suggestions
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Global flags override values from the configuration file and the
// WEEKPLANNER_* environment variables.
package cmd
