package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// FeaturedQueueRepository handles data access for the featured waiting queue.
type FeaturedQueueRepository struct {
	db *sqlx.DB
}

// NewFeaturedQueueRepository creates a new FeaturedQueueRepository.
func NewFeaturedQueueRepository(db *sqlx.DB) *FeaturedQueueRepository {
	return &FeaturedQueueRepository{db: db}
}

// GetWaiting returns the waiting entry for a (vendor, region) pair, or
// sql.ErrNoRows when none exists. At most one waiting entry can exist
// per pair (enforced by a partial unique index).
func (r *FeaturedQueueRepository) GetWaiting(vendorID, regionID int) (*models.FeaturedQueueEntry, error) {
	const q = `SELECT * FROM featured_queue
	           WHERE vendor_id = $1 AND region_id = $2 AND status = 'waiting'
	           LIMIT 1`
	var entry models.FeaturedQueueEntry
	if err := r.db.Get(&entry, q, vendorID, regionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &entry, nil
}

// Insert creates a new waiting entry with joined_at = now().
func (r *FeaturedQueueRepository) Insert(entry *models.FeaturedQueueEntry) error {
	const q = `INSERT INTO featured_queue (vendor_id, region_id, label, status, joined_at)
	           VALUES ($1, $2, $3, 'waiting', NOW())
	           RETURNING id, status, joined_at, created_at, updated_at`
	return r.db.QueryRowx(q,
		entry.VendorID,
		entry.RegionID,
		entry.Label,
	).Scan(&entry.ID, &entry.Status, &entry.JoinedAt, &entry.CreatedAt, &entry.UpdatedAt)
}

// CountEarlierWaiting counts waiting entries in a region that joined
// strictly before the given time, breaking joined_at ties by id so the
// ordering stays deterministic.
func (r *FeaturedQueueRepository) CountEarlierWaiting(regionID int, joinedAt time.Time, entryID int) (int, error) {
	const q = `SELECT COUNT(1) FROM featured_queue
	           WHERE region_id = $1 AND status = 'waiting'
	             AND (joined_at < $2 OR (joined_at = $2 AND id < $3))`
	var count int
	if err := r.db.Get(&count, q, regionID, joinedAt, entryID); err != nil {
		return 0, err
	}
	return count, nil
}

// GetOldestWaiting returns up to limit waiting entries in a region in
// FIFO join order.
func (r *FeaturedQueueRepository) GetOldestWaiting(regionID, limit int) ([]models.FeaturedQueueEntry, error) {
	const q = `SELECT * FROM featured_queue
	           WHERE region_id = $1 AND status = 'waiting'
	           ORDER BY joined_at ASC, id ASC
	           LIMIT $2`
	var entries []models.FeaturedQueueEntry
	if err := r.db.Select(&entries, q, regionID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkPromoted transitions a waiting entry to promoted.
func (r *FeaturedQueueRepository) MarkPromoted(id int) error {
	const q = `UPDATE featured_queue SET status = 'promoted', updated_at = NOW()
	           WHERE id = $1 AND status = 'waiting'`
	_, err := r.db.Exec(q, id)
	return err
}

// Cancel removes a vendor from a region's waiting queue.
func (r *FeaturedQueueRepository) Cancel(vendorID, regionID int) error {
	const q = `UPDATE featured_queue SET status = 'cancelled', updated_at = NOW()
	           WHERE vendor_id = $1 AND region_id = $2 AND status = 'waiting'`
	res, err := r.db.Exec(q, vendorID, regionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
