package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	schedrunner "github.com/target/competitions-api/internal/adapters/scheduler"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/migrate"
	"github.com/target/competitions-api/internal/service"
)

const defaultListLimit = 20

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "competitions-admin",
		Short:         "Operator tasks for the competitions job queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.AddCommand(
		newMigrateCmd(a),
		newScanRemindersCmd(a),
		newJobStatsCmd(a),
		newListJobsCmd(a),
		newRequeueJobCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.database(ctx)
			if err != nil {
				return err
			}
			pending, err := migrate.Pending(ctx, db)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			if err := migrate.Run(ctx, db); err != nil {
				return err
			}
			for _, v := range pending {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			return nil
		},
	}
}

func newScanRemindersCmd(a *app) *cobra.Command {
	var nowFlag string
	cmd := &cobra.Command{
		Use:   "scan-reminders",
		Short: "Run one reminder scan and enqueue send_reminder jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if nowFlag != "" {
				parsed, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("--now must be RFC3339: %w", err)
				}
				now = parsed
			}

			ctx := cmd.Context()
			svcs, err := a.services(ctx)
			if err != nil {
				return err
			}
			lock, err := a.scanLock(ctx)
			if err != nil {
				return err
			}
			runner, err := schedrunner.NewRunner(schedrunner.RunnerOptions{
				Scheduler: svcs.Reminders,
				Lock:      lock,
				LockTTL:   a.cfg.Reminder.LockTTL,
				Now:       func() time.Time { return now },
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			var res service.ReminderScanResult
			ran, err := runner.Guard(ctx, func(ctx context.Context) error {
				var serr error
				res, serr = svcs.Reminders.Scan(ctx, now)
				return serr
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ran {
				fmt.Fprintln(out, "lock held elsewhere, skipped")
				return nil
			}
			fmt.Fprintf(out, "window %s .. %s\n", res.WindowStart.Format(time.RFC3339), res.WindowEnd.Format(time.RFC3339))
			fmt.Fprintf(out, "events %d, enqueued %d, already queued %d\n", res.Events, res.Enqueued, res.Deduped)
			return nil
		},
	}
	cmd.Flags().StringVar(&nowFlag, "now", "", "scan as of this RFC3339 time instead of the current time")
	return cmd
}

func newJobStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "job-stats",
		Short: "Print job counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svcs.Jobs.Stats(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tCOUNT")
			fmt.Fprintf(tw, "pending\t%d\n", stats.Pending)
			fmt.Fprintf(tw, "processing\t%d\n", stats.Processing)
			fmt.Fprintf(tw, "done\t%d\n", stats.Done)
			fmt.Fprintf(tw, "failed\t%d\n", stats.Failed)
			fmt.Fprintf(tw, "total\t%d\n", stats.Total())
			return tw.Flush()
		},
	}
}

func newListJobsCmd(a *app) *cobra.Command {
	var (
		status  string
		jobType string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list-jobs",
		Short: "List jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := &model.JobListOptions{Limit: limit}
			if status != "" {
				var s model.JobStatus
				if err := s.UnmarshalText([]byte(status)); err != nil {
					return err
				}
				opts.Status = &s
			}
			if jobType != "" {
				t := model.JobType(jobType)
				opts.Type = &t
			}

			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			jobs, err := svcs.Jobs.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tCREATED\tERROR")
			for _, j := range jobs {
				errText := ""
				if j.Error != nil {
					errText = strings.ReplaceAll(*j.Error, "\n", " ")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					j.ID, j.Type, j.Status, j.CreatedAt.UTC().Format(time.RFC3339), errText)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, processing, done, failed)")
	cmd.Flags().StringVar(&jobType, "type", "", "filter by job type")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of jobs to print")
	return cmd
}

func newRequeueJobCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "requeue-job",
		Short: "Reset a failed job to pending so a worker runs it again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(id) == "" {
				return errors.New("--id is required")
			}
			svcs, err := a.services(cmd.Context())
			if err != nil {
				return err
			}
			if err := svcs.Jobs.Requeue(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s requeued\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the failed job")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
