package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/resources"
	"github.com/teemow/weekplanner/internal/schedule"
	"github.com/teemow/weekplanner/internal/server"
	"github.com/teemow/weekplanner/internal/tools/calendar_tools"
)

// toolSections orders the reference; a tool lands in the first section
// whose match accepts its name.
var toolSections = []struct {
	title string
	match func(name string) bool
}{
	{"Week View", func(name string) bool { return name == "calendar_week_view" }},
	{"Scheduling", func(name string) bool { return strings.HasPrefix(name, "calendar_") }},
	{"Other", func(string) bool { return true }},
}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for the MCP tools and resources.
Tools are read back from a server registered in write mode, so the output
matches what "serve --yolo" exposes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(w io.Writer, outputFile string) error {
	// The factory is never called while listing tools.
	cfg := &config.Config{Backend: config.BackendGraph, Zone: "UTC"}
	serverContext, err := server.NewServerContext(context.Background(), cfg,
		func(context.Context, string) (schedule.Backend, error) {
			return nil, fmt.Errorf("no backend during doc generation")
		})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("weekplanner", version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext, false); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	var tools []mcp.Tool
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	markdown := toolsMarkdown(tools)

	if outputFile == "" {
		_, err = io.WriteString(w, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

func toolsMarkdown(tools []mcp.Tool) string {
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	grouped := make([][]mcp.Tool, len(toolSections))
	for _, tool := range tools {
		for i, section := range toolSections {
			if section.match(tool.Name) {
				grouped[i] = append(grouped[i], tool)
				break
			}
		}
	}

	var b strings.Builder
	b.WriteString("# MCP Tools Reference\n\n")
	b.WriteString("Tools and resources served by `weekplanner serve`. Generated from the registered tool definitions.\n\n")

	b.WriteString("## Table of Contents\n\n")
	for i, section := range toolSections {
		if len(grouped[i]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- [%s](#%s)\n", section.title, strings.ToLower(strings.ReplaceAll(section.title, " ", "-")))
	}
	b.WriteString("- [Resources](#resources)\n\n")

	b.WriteString("## Common Arguments\n\n")
	b.WriteString("- `account`: calendar account to act for (default: `default`). The Graph backend only knows `default`.\n")
	b.WriteString("- `zone`: IANA or Windows zone name; wall-clock arguments such as `start` and `end` are read in it.\n")
	b.WriteString("- `calendar_schedule_meeting` is only registered when the server runs with `--yolo`.\n\n")

	for i, section := range toolSections {
		if len(grouped[i]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", section.title)
		for _, tool := range grouped[i] {
			writeToolMarkdown(&b, tool)
		}
	}

	b.WriteString("## Resources\n\n")
	fmt.Fprintf(&b, "- `%s`: backend, zone and scheduling defaults (JSON).\n", resources.SettingsURI)
	fmt.Fprintf(&b, "- `%s`: events of the current week for the default account (JSON).\n", resources.CurrentWeekURI)

	return b.String()
}

func writeToolMarkdown(b *strings.Builder, tool mcp.Tool) {
	fmt.Fprintf(b, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(b, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("**Arguments:**\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}

		presence := "optional"
		if slices.Contains(tool.InputSchema.Required, name) {
			presence = "required"
		}

		kind, _ := prop["type"].(string)
		if kind == "" {
			kind = "any"
		}
		desc, _ := prop["description"].(string)
		if desc == "" {
			desc = kind + " parameter"
		}

		fmt.Fprintf(b, "- `%s` (%s): %s", name, presence, desc)
		if def, ok := prop["default"]; ok {
			fmt.Fprintf(b, " Default: `%v`.", def)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
