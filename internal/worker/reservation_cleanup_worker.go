package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/repository"
)

// ReservationCleanupWorker cancels reserved slots whose payment hold
// lapsed without a completed checkout. The Stripe expiry webhook handles
// the common case; this is the backstop for missed or delayed webhooks.
type ReservationCleanupWorker struct {
	slotRepo *repository.FeaturedSlotRepository
	interval time.Duration
}

// NewReservationCleanupWorker constructs a ReservationCleanupWorker.
func NewReservationCleanupWorker(slotRepo *repository.FeaturedSlotRepository, interval time.Duration) *ReservationCleanupWorker {
	return &ReservationCleanupWorker{
		slotRepo: slotRepo,
		interval: interval,
	}
}

// Start begins the periodic cleanup loop until context is canceled.
func (w *ReservationCleanupWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting reservation cleanup worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Reservation cleanup worker stopped")
			return
		}
	}
}

func (w *ReservationCleanupWorker) run() {
	cancelled, err := w.slotRepo.CancelStaleReservations()
	if err != nil {
		log.Error().Err(err).Msg("Failed to cancel stale reservations")
		return
	}
	if cancelled > 0 {
		log.Info().Int64("count", cancelled).Msg("Stale reservations cancelled")
	}
}
