package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/service"
)

// ReminderWorker periodically dispatches expiry-warning emails for
// featured slots. Each run is idempotent per (slot, window), so the
// interval only controls how promptly a window is noticed, never how
// many emails a vendor receives.
type ReminderWorker struct {
	reminderSvc *service.ReminderService
	interval    time.Duration
}

// NewReminderWorker constructs a ReminderWorker.
func NewReminderWorker(reminderSvc *service.ReminderService, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		reminderSvc: reminderSvc,
		interval:    interval,
	}
}

// Start begins the periodic reminder loop until context is canceled.
func (w *ReminderWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting reminder worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Reminder worker stopped")
			return
		}
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	report, err := w.reminderSvc.DispatchReminders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reminder dispatch run failed")
		return
	}
	if report.Failed > 0 {
		log.Warn().Int("failed", report.Failed).Strs("errors", report.Errors).
			Msg("Reminder dispatch finished with failures")
	}
}
