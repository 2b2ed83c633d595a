package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// ReminderRepository handles data access for featured slot reminders.
type ReminderRepository struct {
	db *sqlx.DB
}

// NewReminderRepository creates a new ReminderRepository.
func NewReminderRepository(db *sqlx.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// ReminderCandidate is an active slot expiring within a reminder window,
// joined with the owning vendor's notification details. Email is null
// when the slot→vendor→user relation is broken.
type ReminderCandidate struct {
	SlotID       string    `db:"slot_id"`
	VendorID     int       `db:"vendor_id"`
	BusinessName string    `db:"business_name"`
	RegionName   string    `db:"region_name"`
	EndDate      time.Time `db:"end_date"`
	Email        *string   `db:"email"`
}

// GetCandidates returns active slots whose end_date falls within the
// given day bounds.
func (r *ReminderRepository) GetCandidates(dayStart, dayEnd time.Time) ([]ReminderCandidate, error) {
	const q = `
	        SELECT s.id AS slot_id,
	               s.vendor_id,
	               v.business_name,
	               r.name AS region_name,
	               s.end_date,
	               u.email
	        FROM featured_slots s
	        JOIN vendors v ON v.id = s.vendor_id
	        JOIN regions r ON r.id = s.region_id
	        LEFT JOIN users u ON u.id = v.user_id
	        WHERE s.status = 'active'
	          AND s.end_date >= $1 AND s.end_date < $2
	        ORDER BY s.end_date ASC`
	var candidates []ReminderCandidate
	if err := r.db.Select(&candidates, q, dayStart, dayEnd); err != nil {
		return nil, err
	}
	return candidates, nil
}

// HasSent reports whether a successful reminder already exists for the
// (slot, window) pair. Failed records do not count, so an explicit
// re-run retries them.
func (r *ReminderRepository) HasSent(slotID string, window int) (bool, error) {
	const q = `SELECT COUNT(1) FROM featured_slot_reminders
	           WHERE slot_id = $1 AND reminder_window = $2 AND status = 'sent'`
	var count int
	if err := r.db.Get(&count, q, slotID, window); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create records a reminder attempt outcome. On a retried window the row
// is upserted so at most one record exists per (slot, window) pair.
func (r *ReminderRepository) Create(reminder *models.FeaturedSlotReminder) error {
	const q = `INSERT INTO featured_slot_reminders (slot_id, reminder_window, status, error, sent_at)
	           VALUES ($1, $2, $3, $4, NOW())
	           ON CONFLICT (slot_id, reminder_window) DO UPDATE SET
	               status = EXCLUDED.status,
	               error = EXCLUDED.error,
	               sent_at = EXCLUDED.sent_at
	           RETURNING id, sent_at`
	return r.db.QueryRowx(q,
		reminder.SlotID,
		reminder.ReminderWindow,
		reminder.Status,
		reminder.Error,
	).Scan(&reminder.ID, &reminder.SentAt)
}
