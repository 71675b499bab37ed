package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/meetingscribe-backend/internal/app"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

var (
	resetUserID string
	sweepGrace  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "meetingscribe",
	Short:         "Meeting audio transcription and summarization API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, periodic jobs and the Temporal worker",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		a.Log.Info("Migrations applied", "driver", a.Cfg.DB.Driver)
		return nil
	},
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Quota ledger maintenance",
}

var quotaResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Zero one user's used minutes and start a new period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, err := uuid.Parse(resetUserID)
		if err != nil {
			return fmt.Errorf("--user must be a UUID: %w", err)
		}
		a, err := app.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		q, err := a.Services.Quota.Reset(dbctx.Of(cmd.Context()), userID)
		if err != nil {
			return err
		}
		a.Log.Info("Quota reset", "user_id", userID, "next_reset", q.ResetDate)
		return nil
	},
}

var quotaResetDueCmd = &cobra.Command{
	Use:   "reset-due",
	Short: "Reset every quota whose period has ended",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		n, err := a.Services.Quota.ResetDue(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		a.Log.Info("Due quotas reset", "quotas", n)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep-orphans",
	Short: "Delete stored audio objects that no asset row references",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := app.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.WireStorage(cmd.Context()); err != nil {
			return err
		}
		grace := sweepGrace
		if grace <= 0 {
			grace = a.Cfg.OrphanSweepGrace
		}
		if floor := a.Cfg.MinOrphanSweepGrace(); grace < floor {
			return fmt.Errorf("--grace must be at least %s", floor)
		}
		report, err := a.Services.Intake.SweepOrphans(cmd.Context(), grace)
		if err != nil {
			return err
		}
		a.Log.Info("Orphan sweep finished", "scanned", report.Scanned, "orphans", report.Orphans, "deleted", report.Deleted, "failed", report.Failed)
		return nil
	},
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(cmd.Context())
}

func init() {
	quotaResetCmd.Flags().StringVar(&resetUserID, "user", "", "user id")
	_ = quotaResetCmd.MarkFlagRequired("user")
	quotaCmd.AddCommand(quotaResetCmd, quotaResetDueCmd)

	sweepCmd.Flags().DurationVar(&sweepGrace, "grace", 0, "minimum object age (default ORPHAN_SWEEP_GRACE)")

	rootCmd.AddCommand(serveCmd, migrateCmd, quotaCmd, sweepCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "meetingscribe: %v\n", err)
		stop()
		os.Exit(1)
	}
}
