package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// VendorRepository handles data access for vendor accounts.
type VendorRepository struct {
	db *sqlx.DB
}

// NewVendorRepository creates a new VendorRepository.
func NewVendorRepository(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// GetByID returns a single vendor by id.
func (r *VendorRepository) GetByID(id int) (*models.Vendor, error) {
	const q = `SELECT * FROM vendors WHERE id = $1 LIMIT 1`
	var v models.Vendor
	if err := r.db.Get(&v, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &v, nil
}

// GetByAPIKey returns the vendor that owns the given live or test key.
// The second return value reports whether the key is a test key.
func (r *VendorRepository) GetByAPIKey(key string) (*models.Vendor, bool, error) {
	const q = `SELECT * FROM vendors WHERE api_key = $1 OR test_key = $1 LIMIT 1`
	var v models.Vendor
	if err := r.db.Get(&v, q, key); err != nil {
		return nil, false, err
	}
	return &v, v.TestKey == key, nil
}

// GetBySlug returns a single vendor by storefront slug.
func (r *VendorRepository) GetBySlug(slug string) (*models.Vendor, error) {
	const q = `SELECT * FROM vendors WHERE slug = $1 LIMIT 1`
	var v models.Vendor
	if err := r.db.Get(&v, q, slug); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByUserID returns the vendor owned by a user.
func (r *VendorRepository) GetByUserID(userID int) (*models.Vendor, error) {
	const q = `SELECT * FROM vendors WHERE user_id = $1 LIMIT 1`
	var v models.Vendor
	if err := r.db.Get(&v, q, userID); err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new vendor and populates generated fields.
func (r *VendorRepository) Create(vendor *models.Vendor) error {
	const q = `INSERT INTO vendors
	        (user_id, business_name, slug, tier, product_quota, commission_rate,
	         can_sell_products, vendor_status, stripe_account_id, api_key, test_key)
	        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	        RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q,
		vendor.UserID,
		vendor.BusinessName,
		vendor.Slug,
		vendor.Tier,
		vendor.ProductQuota,
		vendor.CommissionRate,
		vendor.CanSellProducts,
		vendor.VendorStatus,
		vendor.StripeAccountID,
		vendor.APIKey,
		vendor.TestKey,
	).Scan(&vendor.ID, &vendor.CreatedAt, &vendor.UpdatedAt)
}

// UpdateTierAttributes persists the tier and its catalog-derived
// attributes. product_quota written here is what the publish-quota
// trigger reads, so the catalog stays the single source of numbers.
func (r *VendorRepository) UpdateTierAttributes(id int, tier models.Tier, quota int, commission decimal.Decimal, canSell bool) error {
	const q = `UPDATE vendors
	           SET tier = $2, product_quota = $3, commission_rate = $4,
	               can_sell_products = $5, updated_at = NOW()
	           WHERE id = $1`
	_, err := r.db.Exec(q, id, tier, quota, commission, canSell)
	return err
}

// UpdateStatus sets the vendor account status.
func (r *VendorRepository) UpdateStatus(id int, status models.VendorStatus) error {
	const q = `UPDATE vendors SET vendor_status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id, status)
	return err
}

// VendorFilter holds filters for admin vendor queries.
type VendorFilter struct {
	Tier   string
	Status string
	Search string
	Page   int
	Limit  int
}

// List returns vendors for admin with filters and pagination.
func (r *VendorRepository) List(filter *VendorFilter) ([]models.Vendor, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	const baseWhere = `WHERE ($1 = '' OR tier = $1)
	        AND ($2 = '' OR vendor_status = $2)
	        AND ($3 = '' OR business_name ILIKE '%' || $3 || '%')`

	countQuery := `SELECT COUNT(1) FROM vendors ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, filter.Tier, filter.Status, filter.Search); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT * FROM vendors ` + baseWhere + `
	        ORDER BY business_name LIMIT $4 OFFSET $5`
	var vendors []models.Vendor
	if err := r.db.Select(&vendors, listQuery, filter.Tier, filter.Status, filter.Search, filter.Limit, offset); err != nil {
		return nil, 0, err
	}
	return vendors, total, nil
}
