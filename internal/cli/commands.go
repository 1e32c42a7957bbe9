package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/streakr/internal/engine"
	"github.com/sadopc/streakr/internal/export"
)

func newStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current streak and today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := s.engine.GetUserStreak(cmd.Context(), s.cfg.User)
			if !r.Found() {
				return fmt.Errorf("streak unavailable for %s: %w", s.cfg.User, resultErr(r.Err))
			}
			printStatus(cmd.OutOrStdout(), s.cfg.User, r)
			return nil
		},
	}
}

func printStatus(w io.Writer, userID string, r engine.Result[*engine.StreakSnapshot]) {
	snap := r.Value
	last := "never"
	if snap.LastActiveDate != nil {
		last = snap.LastActiveDate.Format("2006-01-02")
	}
	goal := "not reached"
	if snap.IsGoalReached {
		goal = "reached"
	}
	state := "active"
	switch {
	case snap.StreakAtRisk:
		state = "at risk"
	case snap.DaysMissed > 0:
		state = fmt.Sprintf("broken (%s missed)", days(snap.DaysMissed))
	case snap.CurrentStreak == 0:
		state = "not started"
	}

	fmt.Fprintf(w, "User:        %s\n", userID)
	fmt.Fprintf(w, "Streak:      %s (best %s)\n", days(snap.CurrentStreak), days(snap.MaxStreak))
	fmt.Fprintf(w, "Today:       %d/%d tasks, goal %s\n", snap.TasksCompletedToday, snap.DailyGoal, goal)
	fmt.Fprintf(w, "Last active: %s\n", last)
	fmt.Fprintf(w, "Status:      %s\n", state)
	fmt.Fprintf(w, "Source:      %s\n", r.Source)
	fmt.Fprintln(w)
	fmt.Fprintln(w, engine.MotivationalMessage(snap))
}

func newRiskCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Check whether the streak breaks at midnight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			risk := s.engine.CheckStreakRisk(cmd.Context(), s.cfg.User)
			if risk.AtRisk {
				fmt.Fprintln(cmd.OutOrStdout(), risk.Message)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your streak is not at risk.")
			return nil
		},
	}
}

func newCompleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Record one completed task for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			today := s.engine.Today()
			rec, err := s.store.RecordCompletion(ctx, s.cfg.User, today)
			if err != nil {
				return err
			}
			s.engine.InvalidateUser(s.cfg.User)
			unlocked := s.engine.CheckMilestones(ctx, s.cfg.User)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded your %s task on %s.\n",
				humanize.Ordinal(rec.TasksCompleted), today.Format("2006-01-02"))
			if r := s.engine.GetUserStreak(ctx, s.cfg.User); r.Found() {
				if rec.GoalReached {
					fmt.Fprintf(out, "Daily goal reached. Streak: %s.\n", days(r.Value.CurrentStreak))
				} else {
					fmt.Fprintf(out, "%d of %d tasks done today.\n", rec.TasksCompleted, r.Value.DailyGoal)
				}
			}
			for _, id := range unlocked {
				fmt.Fprintf(out, "Achievement unlocked: %s\n", s.achievementName(ctx, id))
			}
			return nil
		},
	}
}

func (s *session) achievementName(ctx context.Context, id string) string {
	if a, ok := s.lookupAchievement(ctx, id); ok {
		return a.Name
	}
	return id
}

func (s *session) lookupAchievement(ctx context.Context, id string) (engine.Achievement, bool) {
	list, err := s.store.Achievements(ctx)
	if err != nil {
		return engine.Achievement{}, false
	}
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return engine.Achievement{}, false
}

func newCalendarCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "List daily activity for a month (default: this month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := parseMonth(args, s.engine.Today())
			if err != nil {
				return err
			}
			r := s.engine.GetUserActivityCalendar(cmd.Context(), s.cfg.User, month.Year(), month.Month())
			if r.Source == engine.SourceFailed {
				return fmt.Errorf("activity unavailable: %w", resultErr(r.Err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s for %s\n", month.Format("January 2006"), s.cfg.User)
			if len(r.Value) == 0 {
				fmt.Fprintln(out, "No activity.")
				return nil
			}
			t := newTable("Date", "Tasks", "Goal")
			for _, rec := range r.Value {
				goal := ""
				if rec.GoalReached {
					goal = "✓"
				}
				t.Row(rec.Date.Format("Mon 2006-01-02"), strconv.Itoa(rec.TasksCompleted), goal)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
}

// parseMonth reads an optional YYYY-MM argument, defaulting to the month of
// today.
func parseMonth(args []string, today time.Time) (time.Time, error) {
	if len(args) == 0 {
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	m, err := time.Parse("2006-01", args[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: want YYYY-MM", args[0])
	}
	return m, nil
}

func newAchievementsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, _ := cmd.Flags().GetString("category")
			page, _ := cmd.Flags().GetInt("page")
			pageSize, _ := cmd.Flags().GetInt("page-size")

			q := engine.AchievementQuery{Page: page, PageSize: pageSize}
			if category != "" {
				c, ok := engine.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				q.Category = c
			}

			r := s.engine.GetUserAchievements(cmd.Context(), s.cfg.User, q)
			if r.Source == engine.SourceFailed {
				return fmt.Errorf("achievements unavailable: %w", resultErr(r.Err))
			}

			out := cmd.OutOrStdout()
			if len(r.Value) == 0 {
				fmt.Fprintln(out, "No achievements.")
				return nil
			}
			t := newTable("ID", "Name", "Category", "Progress")
			for _, a := range r.Value {
				t.Row(a.ID, a.Name, string(a.Category), achievementProgress(a))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}
	cmd.Flags().String("category", "", "Filter by category: "+categoryList())
	cmd.Flags().Int("page", 1, "Page number (1-based)")
	cmd.Flags().Int("page-size", 0, "Entries per page (0 = all)")
	return cmd
}

func achievementProgress(a engine.Achievement) string {
	switch {
	case a.IsUnlocked && a.UnlockedAt != nil:
		return "unlocked " + humanize.Time(*a.UnlockedAt)
	case a.IsUnlocked:
		return "unlocked"
	case a.RequiredValue != nil && a.CurrentValue != nil:
		return fmt.Sprintf("%s/%s", humanize.Comma(int64(*a.CurrentValue)), humanize.Comma(int64(*a.RequiredValue)))
	case a.RequiredValue != nil:
		return "needs " + humanize.Comma(int64(*a.RequiredValue))
	}
	return "locked"
}

func categoryList() string {
	names := make([]string, len(engine.Categories))
	for i, c := range engine.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func newUnlockCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <id>",
		Short: "Unlock an achievement by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]
			a, ok := s.lookupAchievement(ctx, id)
			if !ok {
				return fmt.Errorf("unknown achievement %q", id)
			}
			already := s.engine.HasAchievement(ctx, s.cfg.User, id)
			if !s.engine.UnlockAchievement(ctx, s.cfg.User, id) {
				return fmt.Errorf("could not unlock %q", id)
			}
			if already {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was already unlocked.\n", a.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %s.\n", a.Name)
			}
			return nil
		},
	}
}

func newGoalCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "goal <n>",
		Short: "Set the number of tasks per day that keeps the streak",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid goal %q: want a whole number of at least 1", args[0])
			}
			if !s.engine.UpdateDailyGoal(cmd.Context(), s.cfg.User, n) {
				return errors.New("could not update daily goal")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daily goal set to %d.\n", n)
			return nil
		},
	}
}

func newExportCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <csv|json> [YYYY-MM]",
		Short: "Export a month of activity, or achievements as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q: want csv or json", format)
			}
			output, _ := cmd.Flags().GetString("output")
			achievements, _ := cmd.Flags().GetBool("achievements")
			if achievements && format != "json" {
				return errors.New("achievements export is json only")
			}
			ctx := cmd.Context()

			w := cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if achievements {
				r := s.engine.GetUserAchievements(ctx, s.cfg.User, engine.AchievementQuery{})
				if r.Source == engine.SourceFailed {
					return fmt.Errorf("achievements unavailable: %w", resultErr(r.Err))
				}
				return export.WriteAchievementsJSON(w, s.cfg.User, r.Value)
			}

			month, err := parseMonth(args[1:], s.engine.Today())
			if err != nil {
				return err
			}
			r := s.engine.GetUserActivityCalendar(ctx, s.cfg.User, month.Year(), month.Month())
			if r.Source == engine.SourceFailed {
				return fmt.Errorf("activity unavailable: %w", resultErr(r.Err))
			}
			if format == "csv" {
				return export.WriteCalendarCSV(w, r.Value)
			}
			return export.WriteCalendarJSON(w, s.cfg.User, month, r.Value)
		},
	}
	cmd.Flags().StringP("output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().Bool("achievements", false, "Export achievements instead of the calendar (json only)")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// resultErr keeps error wrapping well-formed when a Result carries no error.
func resultErr(err error) error {
	if err == nil {
		return errors.New("no data")
	}
	return err
}
