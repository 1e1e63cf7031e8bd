package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/weekplanner/internal/export"
	"github.com/teemow/weekplanner/internal/schedule"
)

func newWeekCmd() *cobra.Command {
	var (
		date   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the events of one week",
		Long: `Print every event of the Sunday-to-Sunday week containing --date, in the
configured zone. The output is a table by default; json and ics are also
supported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			loc, err := schedule.LoadZone(cfg.Zone)
			if err != nil {
				return err
			}
			day, err := parseDate(date, loc, time.Now())
			if err != nil {
				return err
			}

			planner, release, err := openPlanner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()

			view, err := planner.WeekView(cmd.Context(), day, cfg.Zone)
			if err != nil {
				return fmt.Errorf("failed to fetch the week view: %w", err)
			}
			return export.Write(cmd.OutOrStdout(), view, format)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any date in the week, as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatTable,
		"Output format: "+strings.Join(export.Formats, ", "))

	return cmd
}
