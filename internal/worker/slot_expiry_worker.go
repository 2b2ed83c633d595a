package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/service"
)

// SlotExpiryWorker retires featured slots that ran past their end date,
// drops slots held by suspended vendors, and then notifies the oldest
// waiting vendors in regions where capacity freed up.
type SlotExpiryWorker struct {
	slotRepo   *repository.FeaturedSlotRepository
	queueRepo  *repository.FeaturedQueueRepository
	regionRepo *repository.RegionRepository
	vendorRepo *repository.VendorRepository
	userRepo   *repository.UserRepository
	notifier   *service.NotificationService
	interval   time.Duration
}

// NewSlotExpiryWorker constructs a SlotExpiryWorker.
func NewSlotExpiryWorker(
	slotRepo *repository.FeaturedSlotRepository,
	queueRepo *repository.FeaturedQueueRepository,
	regionRepo *repository.RegionRepository,
	vendorRepo *repository.VendorRepository,
	userRepo *repository.UserRepository,
	notifier *service.NotificationService,
	interval time.Duration,
) *SlotExpiryWorker {
	return &SlotExpiryWorker{
		slotRepo:   slotRepo,
		queueRepo:  queueRepo,
		regionRepo: regionRepo,
		vendorRepo: vendorRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		interval:   interval,
	}
}

// Start begins the periodic expiry loop until context is canceled.
func (w *SlotExpiryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting slot expiry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Slot expiry worker stopped")
			return
		}
	}
}

func (w *SlotExpiryWorker) run(ctx context.Context) {
	expired, err := w.slotRepo.ExpireOverdue()
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire overdue slots")
		return
	}
	if expired > 0 {
		log.Info().Int64("count", expired).Msg("Featured slots expired")
	}

	dropped, err := w.slotRepo.CancelForInactiveVendors()
	if err != nil {
		log.Error().Err(err).Msg("Failed to cancel slots of suspended vendors")
	} else if dropped > 0 {
		log.Info().Int64("count", dropped).Msg("Slots of suspended vendors cancelled")
	}

	w.promoteWaiting(ctx)
}

// promoteWaiting finds regions with spare capacity and a non-empty
// queue, and notifies the oldest waiting vendors. Promotion only sends
// the invite; the vendor still goes through the normal reservation flow,
// so a vendor who never acts simply leaves the capacity open.
func (w *SlotExpiryWorker) promoteWaiting(ctx context.Context) {
	capacities, err := w.regionRepo.GetRegionsWithFreeCapacity()
	if err != nil {
		log.Error().Err(err).Msg("Failed to find regions with free capacity")
		return
	}

	for _, rc := range capacities {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entries, err := w.queueRepo.GetOldestWaiting(rc.RegionID, rc.FreeSlots)
		if err != nil {
			log.Error().Err(err).Int("region_id", rc.RegionID).
				Msg("Failed to load waiting queue")
			continue
		}

		for i := range entries {
			w.promoteEntry(ctx, rc.RegionID, &entries[i])
		}
	}
}

func (w *SlotExpiryWorker) promoteEntry(ctx context.Context, regionID int, entry *models.FeaturedQueueEntry) {
	region, err := w.regionRepo.GetByID(regionID)
	if err != nil {
		log.Error().Err(err).Int("region_id", regionID).Msg("Failed to resolve region for promotion")
		return
	}

	vendor, err := w.vendorRepo.GetByID(entry.VendorID)
	if err != nil {
		log.Error().Err(err).Int("vendor_id", entry.VendorID).Msg("Failed to resolve queued vendor")
		return
	}

	// Mark promoted first: if the email fails the entry is not re-notified
	// on every subsequent pass.
	if err := w.queueRepo.MarkPromoted(entry.ID); err != nil {
		log.Error().Err(err).Int("entry_id", entry.ID).Msg("Failed to mark queue entry promoted")
		return
	}

	user, err := w.userRepo.GetByID(vendor.UserID)
	if err != nil || user.Email == "" {
		log.Warn().Int("vendor_id", vendor.ID).Msg("No notification email for promoted vendor")
		return
	}

	if err := w.notifier.SendSlotAvailableNotice(ctx, user.Email, vendor.BusinessName, region.Name); err != nil {
		log.Error().Err(err).Int("vendor_id", vendor.ID).Str("region", region.Slug).
			Msg("Failed to send slot-available notice")
		return
	}

	log.Info().Int("vendor_id", vendor.ID).Str("region", region.Slug).
		Msg("Queued vendor notified of free slot")
}
