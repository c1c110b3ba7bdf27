package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/domain/reminder"
	"docflow/internal/infrastructure/http/v1/dto"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Reminder scan operations",
}

var remindersRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder and overdue scan once",
	Long: `Run the reminder and overdue scan immediately, regardless of whether
the worker already ran it today.

--at replays the scan as of another moment, e.g. a day the worker missed.
A bare date runs at the configured REMINDER_HOUR in TIMEZONE.`,
	Example: `  # Scan now
  docctl reminders run

  # Replay a missed day
  docctl reminders run --at 2025-06-10`,
	RunE: runReminders,
}

func init() {
	rootCmd.AddCommand(remindersCmd)
	remindersCmd.AddCommand(remindersRunCmd)

	remindersRunCmd.Flags().String("at", "", "Scan time (YYYY-MM-DD or RFC3339, default: now)")
}

func runReminders(cmd *cobra.Command, args []string) error {
	atStr, _ := cmd.Flags().GetString("at")
	at, err := parseScanTime(atStr, cfg.Location, cfg.ReminderHour)
	if err != nil {
		return err
	}

	return withContainer(cmd.Context(), func(c *app.Container) error {
		var report reminder.Report
		if at.IsZero() {
			report, err = c.Runner.RunNow(cmd.Context())
		} else {
			report, err = c.Runner.RunAt(cmd.Context(), at)
		}
		if err != nil {
			return fmt.Errorf("reminder scan: %w", err)
		}
		log.Infow("reminder scan finished",
			"ran_at", report.RanAt,
			"fired", report.FiredReminders,
			"auto_transitioned", report.AutoTransitioned,
			"errors", len(report.Errors))
		return printJSON(cmd.OutOrStdout(), dto.FromReminderReport(report))
	})
}

// parseScanTime returns the zero time for an empty value.
func parseScanTime(s string, loc *time.Location, hour int) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, use YYYY-MM-DD or RFC3339", s)
	}
	return d.Add(time.Duration(hour) * time.Hour), nil
}
