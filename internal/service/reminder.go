package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/observability/metrics"
)

// DefaultReminderWindow is the lead time used when none is configured.
const DefaultReminderWindow = 24 * time.Hour

// reminderWindowWidth is the width of the scanned start_at range.
const reminderWindowWidth = time.Hour

// ReminderScannerOptions groups dependencies for ReminderScanner.
type ReminderScannerOptions struct {
	Repos   ReminderScannerRepos
	Window  time.Duration // Lead time H; negative values fall back to 24h
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// ReminderScannerRepos lists the stores the scanner reads and the job store it writes.
type ReminderScannerRepos struct {
	Events        core.EventRepository
	Registrations core.RegistrationRepository
	Jobs          *JobService
}

// ReminderScanResult summarises one scan.
type ReminderScanResult struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Events      int       `json:"events"`
	Enqueued    int       `json:"enqueued"`
	Deduped     int       `json:"deduped"`
}

// ReminderScanner enqueues one send_reminder job per active registration of every
// published event entering the reminder window.
type ReminderScanner struct {
	events        core.EventRepository
	registrations core.RegistrationRepository
	jobs          *JobService
	window        time.Duration
	logger        *slog.Logger
	metrics       *metrics.Recorder
}

var _ core.JobScheduler = (*ReminderScanner)(nil)

// NewReminderScanner constructs a new ReminderScanner.
func NewReminderScanner(opts ReminderScannerOptions) (*ReminderScanner, error) {
	switch {
	case opts.Repos.Events == nil:
		return nil, errors.New("EventRepository is required")
	case opts.Repos.Registrations == nil:
		return nil, errors.New("RegistrationRepository is required")
	case opts.Repos.Jobs == nil:
		return nil, errors.New("JobService is required")
	}
	window := opts.Window
	if window < 0 {
		window = DefaultReminderWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderScanner{
		events:        opts.Repos.Events,
		registrations: opts.Repos.Registrations,
		jobs:          opts.Repos.Jobs,
		window:        window,
		logger:        logger.With("component", "reminder_scanner"),
		metrics:       opts.Metrics,
	}, nil
}

// Window returns the start_at range scanned at now: [now+H, now+H+1h).
func (s *ReminderScanner) Window(now time.Time) (time.Time, time.Time) {
	start := now.UTC().Add(s.window)
	return start, start.Add(reminderWindowWidth)
}

// Scan runs one pass at now. Dedup is by existence in any status, so a failed
// reminder is never re-enqueued by a later scan.
func (s *ReminderScanner) Scan(ctx context.Context, now time.Time) (ReminderScanResult, error) {
	began := time.Now()
	res, err := s.scan(ctx, now)

	metrics.EmitReminderScan(s.metrics, metrics.ScanMetric{
		Enqueued: res.Enqueued,
		Deduped:  res.Deduped,
		Duration: time.Since(began),
		Err:      err,
		At:       now,
	})
	if err != nil {
		return res, err
	}

	s.logger.InfoContext(ctx, "reminder scan complete",
		"window_start", res.WindowStart,
		"window_end", res.WindowEnd,
		"events", res.Events,
		"enqueued", res.Enqueued,
		"deduped", res.Deduped,
	)
	return res, nil
}

// Tick implements core.JobScheduler.
func (s *ReminderScanner) Tick(ctx context.Context, now time.Time) (int, error) {
	res, err := s.Scan(ctx, now)
	return res.Enqueued, err
}

func (s *ReminderScanner) scan(ctx context.Context, now time.Time) (ReminderScanResult, error) {
	var res ReminderScanResult
	res.WindowStart, res.WindowEnd = s.Window(now)

	events, err := s.events.ListPublishedStartingBetween(ctx, res.WindowStart, res.WindowEnd)
	if err != nil {
		return res, fmt.Errorf("list events in window: %w", err)
	}
	res.Events = len(events)

	for _, evt := range events {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.scanEvent(ctx, evt, &res); err != nil {
			return res, fmt.Errorf("event %s: %w", evt.ID, err)
		}
	}
	return res, nil
}

func (s *ReminderScanner) scanEvent(ctx context.Context, evt *model.Event, res *ReminderScanResult) error {
	regs, err := s.registrations.ListActiveByEvent(ctx, evt.ID)
	if err != nil {
		return fmt.Errorf("list registrations: %w", err)
	}

	for _, reg := range regs {
		exists, err := s.jobs.ExistsForDedup(ctx, model.DedupKey{
			Type:       model.JobTypeSendReminder,
			PayloadKey: model.PayloadKeyRegistrationID,
			Value:      reg.ID,
		})
		if err != nil {
			return fmt.Errorf("dedup check: %w", err)
		}
		if exists {
			res.Deduped++
			continue
		}

		if _, err := s.jobs.Create(ctx, &model.CreateJobRequest{
			Type: model.JobTypeSendReminder,
			Payload: map[string]string{
				model.PayloadKeyRegistrationID: reg.ID,
				model.PayloadKeyEventID:        evt.ID,
			},
		}); err != nil {
			return err
		}
		res.Enqueued++
	}
	return nil
}
