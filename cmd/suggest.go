package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/weekplanner/internal/export"
	"github.com/teemow/weekplanner/internal/schedule"
)

func newSuggestCmd() *cobra.Command {
	var (
		attendees  string
		start      string
		end        string
		duration   time.Duration
		percentage float64
		location   string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the calendar service for meeting time suggestions",
		Long: `Ask the backend for times between --start and --end when enough of the
attendees are free. Attendees default to the configured suggestion attendees.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			window, err := parseWindow(start, end, cfg.Zone)
			if err != nil {
				return err
			}

			planner, release, err := openPlanner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()

			result, err := planner.FindMeetingTimes(cmd.Context(), schedule.SuggestionParams{
				Attendees:                 splitAttendees(attendees),
				LocationHint:              location,
				Window:                    schedule.TimeSlot(window),
				Duration:                  duration,
				MinimumAttendeePercentage: percentage,
				PreferredZone:             cfg.Zone,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return export.WriteJSON(cmd.OutOrStdout(), result)
			}
			return writeSuggestions(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&attendees, "attendees", "a", "", "Comma or semicolon separated attendee addresses")
	cmd.Flags().StringVar(&start, "start", "", "Window start, e.g. 2025-01-06T09:00")
	cmd.Flags().StringVar(&end, "end", "", "Window end, e.g. 2025-01-10T17:00")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Meeting duration (default: configured duration)")
	cmd.Flags().Float64Var(&percentage, "min-percentage", 0, "Share of attendees that must be free, 0-100 (default: configured)")
	cmd.Flags().StringVar(&location, "location", "", "Location hint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func writeSuggestions(w io.Writer, result schedule.SuggestionResult) error {
	if len(result.Suggestions) == 0 {
		reason := result.EmptyReason
		if reason == "" {
			reason = "none given"
		}
		_, err := fmt.Fprintf(w, "No suggestions (reason: %s).\n", reason)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "START\tEND\tCONFIDENCE\tREASON\n")
	for _, s := range result.Suggestions {
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\n", s.Slot.Start.DateTime, s.Slot.End.DateTime, s.Confidence, s.Reason)
	}
	return tw.Flush()
}
