package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// RegionRepository handles data access for LGA regions.
type RegionRepository struct {
	db *sqlx.DB
}

// NewRegionRepository creates a new RegionRepository.
func NewRegionRepository(db *sqlx.DB) *RegionRepository {
	return &RegionRepository{db: db}
}

// GetByID returns a single region by id.
func (r *RegionRepository) GetByID(id int) (*models.Region, error) {
	const q = `SELECT * FROM regions WHERE id = $1 LIMIT 1`
	var region models.Region
	if err := r.db.Get(&region, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &region, nil
}

// GetBySlug returns a single region by slug.
func (r *RegionRepository) GetBySlug(slug string) (*models.Region, error) {
	const q = `SELECT * FROM regions WHERE slug = $1 LIMIT 1`
	var region models.Region
	if err := r.db.Get(&region, q, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &region, nil
}

// GetAll returns all regions, active first, alphabetical within status.
func (r *RegionRepository) GetAll() ([]models.Region, error) {
	const q = `SELECT * FROM regions ORDER BY is_active DESC, name`
	var regions []models.Region
	if err := r.db.Select(&regions, q); err != nil {
		return nil, err
	}
	return regions, nil
}

// Create inserts a new region and populates generated fields.
func (r *RegionRepository) Create(region *models.Region) error {
	const q = `INSERT INTO regions (name, slug, slot_capacity, slot_price_cents, is_active)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q,
		region.Name,
		region.Slug,
		region.SlotCapacity,
		region.SlotPriceCents,
		region.IsActive,
	).Scan(&region.ID, &region.CreatedAt, &region.UpdatedAt)
}

// Update updates a region's attributes.
func (r *RegionRepository) Update(region *models.Region) error {
	const q = `UPDATE regions
	           SET name = $1, slug = $2, slot_capacity = $3,
	               slot_price_cents = $4, is_active = $5, updated_at = NOW()
	           WHERE id = $6
	           RETURNING updated_at`
	return r.db.QueryRowx(q,
		region.Name,
		region.Slug,
		region.SlotCapacity,
		region.SlotPriceCents,
		region.IsActive,
		region.ID,
	).Scan(&region.UpdatedAt)
}

// RegionCapacity reports free featured-slot capacity in a region.
type RegionCapacity struct {
	RegionID  int `db:"region_id"`
	FreeSlots int `db:"free_slots"`
}

// GetRegionsWithFreeCapacity returns active regions that have spare slot
// capacity and at least one waiting queue entry. Used by the promotion
// pass after slots expire.
func (r *RegionRepository) GetRegionsWithFreeCapacity() ([]RegionCapacity, error) {
	const q = `
	        SELECT r.id AS region_id,
	               r.slot_capacity - COALESCE(s.held, 0) AS free_slots
	        FROM regions r
	        LEFT JOIN (
	            SELECT region_id, COUNT(1) AS held
	            FROM featured_slots
	            WHERE status IN ('reserved', 'active')
	            GROUP BY region_id
	        ) s ON s.region_id = r.id
	        WHERE r.is_active = true
	          AND r.slot_capacity - COALESCE(s.held, 0) > 0
	          AND EXISTS (
	              SELECT 1 FROM featured_queue q
	              WHERE q.region_id = r.id AND q.status = 'waiting'
	          )`
	var capacities []RegionCapacity
	if err := r.db.Select(&capacities, q); err != nil {
		return nil, err
	}
	return capacities, nil
}
