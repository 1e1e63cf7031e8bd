package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/weekplanner/internal/export"
	"github.com/teemow/weekplanner/internal/schedule"
)

func newScheduleCmd() *cobra.Command {
	var (
		subject   string
		body      string
		attendees string
		start     string
		end       string
		duration  time.Duration
		dryRun    bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Create a meeting in the first free slot of a window",
		Long: `Look up the free/busy data of the tracked attendees (or, when none are
configured, of the meeting's attendees) between --start and --end and create
the meeting in the slot the configured policy picks.

Times are wall-clock times in the configured zone, e.g. 2025-01-06T09:00.
With --dry-run the slot is printed and nothing is created.`,
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
			req := schedule.MeetingRequest{
				Subject:   subject,
				Body:      body,
				Attendees: attendees,
				Window:    window,
				Zone:      cfg.Zone,
				Duration:  duration,
			}

			planner, release, err := openPlanner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()

			out := cmd.OutOrStdout()
			if dryRun {
				slot, err := planner.ResolveSlot(cmd.Context(), req)
				if err != nil {
					return err
				}
				if asJSON {
					return export.WriteJSON(out, slot)
				}
				printSlot(out, "Free slot", slot)
				return nil
			}

			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			outcome, err := planner.ScheduleMeeting(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return export.WriteJSON(out, outcome)
			}
			printSlot(out, fmt.Sprintf("Scheduled %q", subject), outcome.Slot)
			if outcome.Event.WebLink != "" {
				fmt.Fprintf(out, "  %s\n", outcome.Event.WebLink)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Meeting subject")
	cmd.Flags().StringVar(&body, "body", "", "Meeting description")
	cmd.Flags().StringVarP(&attendees, "attendees", "a", "", "Semicolon separated attendee addresses")
	cmd.Flags().StringVar(&start, "start", "", "Window start, e.g. 2025-01-06T09:00")
	cmd.Flags().StringVar(&end, "end", "", "Window end, e.g. 2025-01-06T17:00")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Meeting duration (default: configured duration)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the slot, do not create the meeting")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func printSlot(w io.Writer, label string, slot schedule.SlotCandidate) {
	fmt.Fprintf(w, "%s: %s to %s (%s, %d min)\n",
		label, slot.Start.DateTime, slot.End.DateTime, slot.Start.TimeZone, slot.DurationMinutes)
}
