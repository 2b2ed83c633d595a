package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// FeaturedSlotRepository handles data access for featured slots.
type FeaturedSlotRepository struct {
	db *sqlx.DB
}

// NewFeaturedSlotRepository creates a new FeaturedSlotRepository.
func NewFeaturedSlotRepository(db *sqlx.DB) *FeaturedSlotRepository {
	return &FeaturedSlotRepository{db: db}
}

// Reserve attempts an atomic capacity-checked reservation via the
// reserve_featured_slot database function. The check-and-insert happens
// in a single statement; a separate count-then-insert sequence would
// race under concurrent reservations. Returns the reservation id, or
// nil when the region is at capacity.
func (r *FeaturedSlotRepository) Reserve(vendorID, regionID int, hold time.Duration) (*string, error) {
	const q = `SELECT reserve_featured_slot($1, $2, make_interval(secs => $3))`
	var reservationID *string
	if err := r.db.Get(&reservationID, q, vendorID, regionID, hold.Seconds()); err != nil {
		return nil, err
	}
	return reservationID, nil
}

// GetByID returns a single slot by id.
func (r *FeaturedSlotRepository) GetByID(id string) (*models.FeaturedSlot, error) {
	const q = `SELECT * FROM featured_slots WHERE id = $1 LIMIT 1`
	var slot models.FeaturedSlot
	if err := r.db.Get(&slot, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &slot, nil
}

// SetSessionID records the Stripe checkout session created for a
// reservation so the webhook can correlate the payment back to it.
func (r *FeaturedSlotRepository) SetSessionID(id, sessionID string) error {
	const q = `UPDATE featured_slots SET stripe_session_id = $2, updated_at = NOW()
	           WHERE id = $1 AND status = 'reserved'`
	_, err := r.db.Exec(q, id, sessionID)
	return err
}

// Activate transitions a reserved slot to active with its running dates.
// Only a reserved slot can be activated; a slot is never mutated back to
// active from a terminal state.
func (r *FeaturedSlotRepository) Activate(id string, start, end time.Time) error {
	const q = `UPDATE featured_slots
	           SET status = 'active', start_date = $2, end_date = $3,
	               reserved_until = NULL, updated_at = NOW()
	           WHERE id = $1 AND status = 'reserved'`
	res, err := r.db.Exec(q, id, start, end)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CancelReservation cancels a reserved slot, releasing its capacity.
func (r *FeaturedSlotRepository) CancelReservation(id string) error {
	const q = `UPDATE featured_slots SET status = 'cancelled', updated_at = NOW()
	           WHERE id = $1 AND status = 'reserved'`
	_, err := r.db.Exec(q, id)
	return err
}

// ExpireOverdue marks active slots past their end date as expired.
// Returns the number of slots expired.
func (r *FeaturedSlotRepository) ExpireOverdue() (int64, error) {
	const q = `UPDATE featured_slots SET status = 'expired', updated_at = NOW()
	           WHERE status = 'active' AND end_date < NOW()`
	res, err := r.db.Exec(q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CancelStaleReservations cancels reserved slots whose payment hold has
// lapsed without a completed checkout. Returns the number cancelled.
func (r *FeaturedSlotRepository) CancelStaleReservations() (int64, error) {
	const q = `UPDATE featured_slots SET status = 'cancelled', updated_at = NOW()
	           WHERE status = 'reserved' AND reserved_until < NOW()`
	res, err := r.db.Exec(q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CancelForInactiveVendors cancels reserved and active slots owned by
// suspended vendors. Returns the number cancelled.
func (r *FeaturedSlotRepository) CancelForInactiveVendors() (int64, error) {
	const q = `UPDATE featured_slots s SET status = 'cancelled', updated_at = NOW()
	           WHERE s.status IN ('reserved', 'active')
	             AND EXISTS (
	                 SELECT 1 FROM vendors v
	                 WHERE v.id = s.vendor_id AND v.vendor_status = 'suspended'
	             )`
	res, err := r.db.Exec(q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByRegion returns slots in a region, optionally filtered by status,
// newest first.
func (r *FeaturedSlotRepository) ListByRegion(regionID int, status string) ([]models.FeaturedSlot, error) {
	const q = `SELECT * FROM featured_slots
	           WHERE region_id = $1 AND ($2 = '' OR status = $2)
	           ORDER BY created_at DESC`
	var slots []models.FeaturedSlot
	if err := r.db.Select(&slots, q, regionID, status); err != nil {
		return nil, err
	}
	return slots, nil
}
