package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/cache"
	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// ReservationStatus distinguishes the two normal outcomes of a
// reservation attempt. A full region is not an error.
type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "reserved"
	ReservationStatusQueued   ReservationStatus = "queued"
)

// ReservationOutcome is the result of a featured-slot request: either a
// held reservation with a checkout URL, or a queue placement with the
// vendor's position.
type ReservationOutcome struct {
	Status        ReservationStatus `json:"status"`
	ReservationID string            `json:"reservationId,omitempty"`
	CheckoutURL   string            `json:"checkoutUrl,omitempty"`
	QueuePosition int               `json:"queuePosition,omitempty"`
	QueueEntryID  int               `json:"queueEntryId,omitempty"`
}

// FeaturedService owns featured-slot reservations, the waiting queue,
// and slot finalization from payment events.
type FeaturedService struct {
	regionRepo *repository.RegionRepository
	slotRepo   *repository.FeaturedSlotRepository
	queueRepo  *repository.FeaturedQueueRepository
	resCache   *cache.ReservationCache
	payments   *PaymentService
	hold       time.Duration
	duration   time.Duration
}

// NewFeaturedService constructs a FeaturedService.
func NewFeaturedService(
	regionRepo *repository.RegionRepository,
	slotRepo *repository.FeaturedSlotRepository,
	queueRepo *repository.FeaturedQueueRepository,
	resCache *cache.ReservationCache,
	payments *PaymentService,
	hold, duration time.Duration,
) *FeaturedService {
	return &FeaturedService{
		regionRepo: regionRepo,
		slotRepo:   slotRepo,
		queueRepo:  queueRepo,
		resCache:   resCache,
		payments:   payments,
		hold:       hold,
		duration:   duration,
	}
}

// ReserveSlot attempts a capacity-checked reservation for the vendor in
// the region. The check-and-reserve is a single atomic database call;
// when the region is at capacity the vendor falls through to the
// waiting queue and the outcome carries their position instead of a
// checkout session.
func (s *FeaturedService) ReserveSlot(ctx context.Context, vendor *models.Vendor, regionSlug string) (*ReservationOutcome, error) {
	region, err := s.regionRepo.GetBySlug(regionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrRegionNotFound
		}
		return nil, fmt.Errorf("resolve region: %w", err)
	}
	if !region.IsActive {
		return nil, utils.ErrRegionInactive
	}

	reservationID, err := s.slotRepo.Reserve(vendor.ID, region.ID, s.hold)
	if err != nil {
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	if reservationID == nil {
		// Region at capacity: normal branch, queue the vendor.
		return s.queueVendor(ctx, vendor, region)
	}

	sess, err := s.payments.CreateSlotCheckout(region, *reservationID, s.hold)
	if err != nil {
		// Release the held capacity rather than leaving an orphan
		// reservation until the cleanup worker finds it.
		if cancelErr := s.slotRepo.CancelReservation(*reservationID); cancelErr != nil {
			log.Error().Err(cancelErr).Str("reservation_id", *reservationID).
				Msg("Failed to release reservation after checkout failure")
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.slotRepo.SetSessionID(*reservationID, sess.ID); err != nil {
		log.Error().Err(err).Str("reservation_id", *reservationID).
			Msg("Failed to record checkout session on reservation")
	}

	if err := s.resCache.Set(ctx, &cache.ReservationData{
		ReservationID:     *reservationID,
		VendorID:          vendor.ID,
		RegionID:          region.ID,
		RegionSlug:        region.Slug,
		CheckoutSessionID: sess.ID,
		AmountCents:       region.SlotPriceCents,
		ExpiresAt:         time.Now().Add(s.hold),
	}); err != nil {
		log.Warn().Err(err).Str("reservation_id", *reservationID).
			Msg("Failed to cache reservation")
	}

	log.Info().
		Int("vendor_id", vendor.ID).
		Str("region", region.Slug).
		Str("reservation_id", *reservationID).
		Msg("Featured slot reserved")

	return &ReservationOutcome{
		Status:        ReservationStatusReserved,
		ReservationID: *reservationID,
		CheckoutURL:   sess.URL,
	}, nil
}

// queueVendor upserts the waiting entry and computes the position.
func (s *FeaturedService) queueVendor(ctx context.Context, vendor *models.Vendor, region *models.Region) (*ReservationOutcome, error) {
	entry, err := s.UpsertQueueEntry(vendor.ID, region.ID, vendor.BusinessName)
	if err != nil {
		return nil, fmt.Errorf("join queue: %w", err)
	}

	position, err := s.QueuePosition(region.ID, entry)
	if err != nil {
		return nil, fmt.Errorf("compute queue position: %w", err)
	}

	log.Info().
		Int("vendor_id", vendor.ID).
		Str("region", region.Slug).
		Int("position", position).
		Msg("Region at capacity, vendor queued")

	return &ReservationOutcome{
		Status:        ReservationStatusQueued,
		QueuePosition: position,
		QueueEntryID:  entry.ID,
	}, nil
}

// UpsertQueueEntry finds an existing waiting entry for (vendor, region)
// and reuses it; otherwise inserts a new entry joined now. Re-requesting
// never creates a duplicate.
func (s *FeaturedService) UpsertQueueEntry(vendorID, regionID int, label string) (*models.FeaturedQueueEntry, error) {
	existing, err := s.queueRepo.GetWaiting(vendorID, regionID)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	entry := &models.FeaturedQueueEntry{
		VendorID: vendorID,
		RegionID: regionID,
		Label:    label,
	}
	if err := s.queueRepo.Insert(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// QueuePosition computes a vendor's rank in a region's waiting queue:
// one plus the number of waiting entries that joined strictly earlier.
// An entry with no joined_at defaults to position 1.
func (s *FeaturedService) QueuePosition(regionID int, entry *models.FeaturedQueueEntry) (int, error) {
	if entry.JoinedAt == nil {
		return 1, nil
	}
	earlier, err := s.queueRepo.CountEarlierWaiting(regionID, *entry.JoinedAt, entry.ID)
	if err != nil {
		return 0, err
	}
	return earlier + 1, nil
}

// QueueStatus returns the vendor's current waiting entry and position in
// a region, or sql.ErrNoRows when they are not queued.
func (s *FeaturedService) QueueStatus(vendorID int, regionSlug string) (*models.FeaturedQueueEntry, int, error) {
	region, err := s.regionRepo.GetBySlug(regionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, utils.ErrRegionNotFound
		}
		return nil, 0, err
	}

	entry, err := s.queueRepo.GetWaiting(vendorID, region.ID)
	if err != nil {
		return nil, 0, err
	}
	position, err := s.QueuePosition(region.ID, entry)
	if err != nil {
		return nil, 0, err
	}
	return entry, position, nil
}

// LeaveQueue cancels the vendor's waiting entry in a region.
func (s *FeaturedService) LeaveQueue(vendorID int, regionSlug string) error {
	region, err := s.regionRepo.GetBySlug(regionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return utils.ErrRegionNotFound
		}
		return err
	}
	return s.queueRepo.Cancel(vendorID, region.ID)
}

// FinalizeReservation activates a reserved slot after its checkout
// completed. Idempotent against webhook redelivery: a slot already out
// of the reserved state is left untouched.
func (s *FeaturedService) FinalizeReservation(ctx context.Context, reservationID string) error {
	start := time.Now()
	end := start.Add(s.duration)
	if err := s.slotRepo.Activate(reservationID, start, end); err != nil {
		if err == sql.ErrNoRows {
			log.Warn().Str("reservation_id", reservationID).
				Msg("Reservation not in reserved state, skipping activation")
			return nil
		}
		return fmt.Errorf("activate slot: %w", err)
	}

	if data, err := s.resCache.GetByReservationID(ctx, reservationID); err == nil {
		_ = s.resCache.Delete(ctx, data)
	}

	log.Info().Str("reservation_id", reservationID).Time("end_date", end).
		Msg("Featured slot activated")
	return nil
}

// ReleaseReservation cancels a reserved slot whose checkout expired or
// failed, freeing the region capacity for the next vendor.
func (s *FeaturedService) ReleaseReservation(ctx context.Context, reservationID string) error {
	if err := s.slotRepo.CancelReservation(reservationID); err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}
	if data, err := s.resCache.GetByReservationID(ctx, reservationID); err == nil {
		_ = s.resCache.Delete(ctx, data)
	}
	log.Info().Str("reservation_id", reservationID).Msg("Featured reservation released")
	return nil
}
