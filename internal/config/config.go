package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teemow/weekplanner/internal/schedule"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "WEEKPLANNER"

	BackendGraph  = "graph"
	BackendGoogle = "google"
)

// Config holds all weekplanner configuration.
type Config struct {
	// Backend selects the remote calendar service: "graph" or "google".
	Backend string

	// Zone is the user's timezone, an IANA or Windows zone name.
	Zone string

	Graph      GraphConfig
	Google     GoogleConfig
	Scheduling SchedulingConfig
	Logging    LoggingConfig
	Server     ServerConfig
}

type GraphConfig struct {
	// Token is a bearer token for Microsoft Graph.
	Token   string
	BaseURL string

	// RateLimit caps outgoing requests per second. 0 disables the limiter.
	RateLimit float64
}

type GoogleConfig struct {
	Account      string
	CalendarID   string
	TokenDir     string
	TokenFile    string
	ClientID     string
	ClientSecret string
}

type SchedulingConfig struct {
	PageSize                  int
	GranularityMinutes        int
	MeetingDuration           time.Duration
	TrackedAttendees          []string
	SuggestionAttendees       []string
	MinimumAttendeePercentage float64
	LocationHint              string
	SlotPolicy                string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Transport   string
	HTTPAddr    string
	MetricsAddr string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendGraph)
	v.SetDefault("zone", "UTC")

	v.SetDefault("graph.base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("graph.rate_limit", 0)

	v.SetDefault("google.account", "default")
	v.SetDefault("google.calendar_id", "primary")

	v.SetDefault("scheduling.page_size", schedule.DefaultPageSize)
	v.SetDefault("scheduling.granularity_minutes", schedule.DefaultGranularityMinutes)
	v.SetDefault("scheduling.meeting_duration", schedule.DefaultMeetingDuration)
	v.SetDefault("scheduling.minimum_attendee_percentage", schedule.DefaultMinimumAttendeePercentage)
	v.SetDefault("scheduling.slot_policy", schedule.LastBusyEndHeuristic{}.Name())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
}

// Load reads configuration from defaults, a YAML file, a .env file in the
// working directory and the environment, in increasing precedence.
// Environment variables use the WEEKPLANNER_ prefix with dots replaced by
// underscores, e.g. WEEKPLANNER_SCHEDULING_PAGE_SIZE.
//
// An explicit path must exist. Without one, weekplanner.yaml is looked up in
// the working directory and the user config directory, and a missing file is
// not an error.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("weekplanner")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "weekplanner"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

// loadDotEnv loads path into the process environment. Variables that are
// already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Backend: strings.ToLower(v.GetString("backend")),
		Zone:    v.GetString("zone"),
		Graph: GraphConfig{
			Token:     v.GetString("graph.token"),
			BaseURL:   v.GetString("graph.base_url"),
			RateLimit: v.GetFloat64("graph.rate_limit"),
		},
		Google: GoogleConfig{
			Account:      v.GetString("google.account"),
			CalendarID:   v.GetString("google.calendar_id"),
			TokenDir:     v.GetString("google.token_dir"),
			TokenFile:    v.GetString("google.token_file"),
			ClientID:     v.GetString("google.client_id"),
			ClientSecret: v.GetString("google.client_secret"),
		},
		Scheduling: SchedulingConfig{
			PageSize:                  v.GetInt("scheduling.page_size"),
			GranularityMinutes:        v.GetInt("scheduling.granularity_minutes"),
			MeetingDuration:           v.GetDuration("scheduling.meeting_duration"),
			TrackedAttendees:          splitList(v.GetStringSlice("scheduling.tracked_attendees")),
			SuggestionAttendees:       splitList(v.GetStringSlice("scheduling.suggestion_attendees")),
			MinimumAttendeePercentage: v.GetFloat64("scheduling.minimum_attendee_percentage"),
			LocationHint:              v.GetString("scheduling.location_hint"),
			SlotPolicy:                v.GetString("scheduling.slot_policy"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Server: ServerConfig{
			Transport:   v.GetString("server.transport"),
			HTTPAddr:    v.GetString("server.http_addr"),
			MetricsAddr: v.GetString("server.metrics_addr"),
		},
	}
}

// splitList flattens list entries that themselves hold comma or semicolon
// separated values, as environment variables do.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ';' }) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks that the configuration can drive a planner.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGraph:
		if c.Graph.Token == "" {
			return fmt.Errorf("graph.token is required for the graph backend")
		}
		if c.Graph.RateLimit < 0 {
			return fmt.Errorf("graph.rate_limit must not be negative, got %g", c.Graph.RateLimit)
		}
	case BackendGoogle:
	default:
		return fmt.Errorf("unknown backend %q: must be %q or %q", c.Backend, BackendGraph, BackendGoogle)
	}

	if _, err := schedule.LoadZone(c.Zone); err != nil {
		return err
	}

	s := c.Scheduling
	if s.PageSize <= 0 {
		return fmt.Errorf("scheduling.page_size must be positive, got %d", s.PageSize)
	}
	if s.GranularityMinutes <= 0 {
		return fmt.Errorf("scheduling.granularity_minutes must be positive, got %d", s.GranularityMinutes)
	}
	if s.MeetingDuration <= 0 {
		return fmt.Errorf("scheduling.meeting_duration must be positive, got %s", s.MeetingDuration)
	}
	if s.MinimumAttendeePercentage < 0 || s.MinimumAttendeePercentage > 100 {
		return fmt.Errorf("scheduling.minimum_attendee_percentage must be between 0 and 100, got %g", s.MinimumAttendeePercentage)
	}
	if _, err := schedule.PolicyByName(s.SlotPolicy); err != nil {
		return err
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// PlannerConfig returns the scheduling settings in planner form.
func (c *Config) PlannerConfig() schedule.PlannerConfig {
	s := c.Scheduling
	return schedule.PlannerConfig{
		PageSize:                  s.PageSize,
		GranularityMinutes:        s.GranularityMinutes,
		MeetingDuration:           s.MeetingDuration,
		TrackedAttendees:          s.TrackedAttendees,
		SuggestionAttendees:       s.SuggestionAttendees,
		MinimumAttendeePercentage: s.MinimumAttendeePercentage,
		LocationHint:              s.LocationHint,
	}
}
