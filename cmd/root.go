package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/logging"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
	backend    string
	zone       string
	account    string
}

var flags globalFlags

// rootCmd represents the base command for the weekplanner application
var rootCmd = &cobra.Command{
	Use:   "weekplanner",
	Short: "Week view and meeting scheduling on top of a remote calendar",
	Long: `weekplanner reads a user's calendar week, finds free slots from attendee
free/busy data, creates meetings and asks the calendar service for meeting
time suggestions. Microsoft Graph and Google Calendar are supported.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "weekplanner version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Configuration file (default: ./weekplanner.yaml or the user config dir)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&flags.backend, "backend", "", "Calendar backend: graph or google")
	pf.StringVar(&flags.zone, "zone", "", "Time zone as IANA or Windows name")
	pf.StringVar(&flags.account, "account", "default", "Account name to act for")

	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig loads the configuration, applies the global flags on top and
// installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return nil, nil, err
	}
	applyGlobalFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handler, err := logging.NewHandler(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	if changed("backend") {
		cfg.Backend = strings.ToLower(flags.backend)
	}
	if changed("zone") {
		cfg.Zone = flags.zone
	}
}
