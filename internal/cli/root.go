// Package cli implements the streakr command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/streakr/internal/clock"
	"github.com/sadopc/streakr/internal/config"
	"github.com/sadopc/streakr/internal/engine"
	"github.com/sadopc/streakr/internal/store"
	"github.com/sadopc/streakr/internal/tui"
)

// session holds what every command needs once flags are parsed.
type session struct {
	clock clock.Clock

	cfg     *config.Config
	logger  *slog.Logger
	logFile *os.File
	store   *store.Store
	engine  *engine.Engine
}

type rootOption func(*session)

// withClock replaces the wall clock, for tests.
func withClock(c clock.Clock) rootOption { return func(s *session) { s.clock = c } }

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Run without a subcommand it starts
// the terminal UI.
func NewRootCmd() *cobra.Command {
	return newRootCmd()
}

func newRootCmd(opts ...rootOption) *cobra.Command {
	s := &session{clock: clock.Real()}
	for _, o := range opts {
		o(s)
	}

	root := &cobra.Command{
		Use:           "streakr",
		Short:         "streakr: keep your daily streak alive",
		Long:          `A terminal streak tracker: record completed tasks, watch your streak, and unlock achievements.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return s.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.runTUI(cmd.Context())
		},
	}

	// Persistent flags available to all commands
	root.PersistentFlags().String("config", "", "Config file (default: <config dir>/streakr/config.yaml)")
	root.PersistentFlags().String("db", "", "SQLite database path")
	root.PersistentFlags().StringP("user", "u", "", "User id to act on")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("timezone", "", "IANA timezone that decides where a day begins")

	root.AddCommand(
		newStatusCmd(s),
		newRiskCmd(s),
		newCompleteCmd(s),
		newCalendarCmd(s),
		newAchievementsCmd(s),
		newUnlockCmd(s),
		newGoalCmd(s),
		newExportCmd(s),
	)
	return root
}

// open loads configuration, opens the store and builds the engine. The TUI
// owns the terminal, so the root command logs to a file; subcommands log to
// stderr.
func (s *session) open(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	s.cfg = cfg

	level, _ := cfg.Level()
	logOut := cmd.ErrOrStderr()
	if !cmd.HasParent() {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		s.logFile = f
		logOut = f
	}
	s.logger = newLogger(logOut, level)

	st, err := store.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := st.SeedAchievements(ctx, engine.DefaultCatalog()); err != nil {
		st.Close()
		return err
	}
	st.SetAggregatesEnabled(cfg.Store.Aggregates)
	st.SetClock(s.clock)
	s.store = st

	loc, _ := cfg.Location()
	streakTTL, activityTTL, achievementsTTL, _ := cfg.TTLs()
	s.engine = engine.New(st,
		engine.WithClock(s.clock),
		engine.WithLocation(loc),
		engine.WithLogger(s.logger),
		engine.WithCatalog(st),
		engine.WithTTLs(streakTTL, activityTTL, achievementsTTL),
		engine.WithDedupe(cfg.Cache.Dedupe),
	)

	s.logger.Debug("session opened", "user_id", cfg.User, "database", cfg.Database,
		"timezone", loc.String(), "aggregates", cfg.Store.Aggregates)
	return nil
}

func (s *session) close() error {
	var err error
	if s.store != nil {
		err = s.store.Close()
		s.store = nil
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
	return err
}

func (s *session) runTUI(ctx context.Context) error {
	app := tui.NewApp(s.engine, s.store, s.cfg.User)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLogFile opens <config dir>/streakr/streakr.log for appending.
func openLogFile() (*os.File, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("locate log directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "streakr.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
