// Package cli is the worker command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"rentflow/internal/app"
	"rentflow/internal/config"
	"rentflow/internal/scheduler"
	"rentflow/pkg/datex"

	"github.com/spf13/cobra"
)

// Opener connects the application. The default reads the environment.
type Opener func() (*app.App, error)

func DefaultOpener() (*app.App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return app.New(cfg)
}

func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "rentflow-worker",
		Short:         "Scheduled jobs of the rental service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		runCmd(open),
		accrueCmd(open),
		remindCmd(open),
		cleanupCmd(open),
		migrateCmd(open),
	)
	return root
}

// withApp opens the application for one command and closes it afterwards.
func withApp(open Opener, fn func(cmd *cobra.Command, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := open()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, a)
	}
}

func runCmd(open Opener) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run accrual, reminders and cleanup on their schedules until interrupted",
		RunE: withApp(open, func(cmd *cobra.Command, a *app.App) error {
			now := time.Now()
			jobs, err := a.Jobs(now)
			if err != nil {
				return err
			}
			s := scheduler.New(jobs...)
			if once || a.Config.RunOnStartup {
				if err := s.RunNow(cmd.Context(), now.In(a.Config.Location())); err != nil {
					if once {
						return err
					}
					log.Printf("worker: startup run: %v", err)
				}
				if once {
					return nil
				}
			}
			log.Printf("worker: started with %d jobs", len(jobs))
			s.Run(cmd.Context())
			log.Println("worker: stopped")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&once, "once", false, "run every job once for now and exit")
	return cmd
}

// asOfFlag registers --as-of and returns a resolver defaulting to today.
func asOfFlag(cmd *cobra.Command) func() (time.Time, error) {
	raw := cmd.Flags().String("as-of", "", "business day, YYYY-MM-DD (default today)")
	return func() (time.Time, error) {
		if *raw == "" {
			return datex.Day(time.Now()), nil
		}
		t, err := datex.Parse(*raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
		}
		return t, nil
	}
}

func accrueCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accrue",
		Short: "Apply late fees for one business day and print the report",
	}
	asOf := asOfFlag(cmd)
	cmd.RunE = withApp(open, func(cmd *cobra.Command, a *app.App) error {
		day, err := asOf()
		if err != nil {
			return err
		}
		rep, err := a.Accrual.RunDailyAccrual(cmd.Context(), day)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	})
	return cmd
}

func remindCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders for payments due within the next days",
	}
	asOf := asOfFlag(cmd)
	cmd.RunE = withApp(open, func(cmd *cobra.Command, a *app.App) error {
		day, err := asOf()
		if err != nil {
			return err
		}
		n, err := a.Accrual.SendReminders(cmd.Context(), day)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminders for %s\n", n, datex.Format(day))
		return nil
	})
	return cmd
}

func cleanupCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete read notifications past retention",
		RunE: withApp(open, func(cmd *cobra.Command, a *app.App) error {
			n, err := a.Notifications.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d notifications\n", n)
			return nil
		}),
	}
}

func migrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: withApp(open, func(cmd *cobra.Command, a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}),
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, open Opener, args []string) error {
	root := NewRootCmd(open)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
