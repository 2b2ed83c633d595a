package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// ProductRepository handles data access for vendor products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id, excluding soft-deleted rows.
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var p models.Product
	if err := r.db.Get(&p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// GetAllByVendor returns a vendor's products with pagination and total count.
func (r *ProductRepository) GetAllByVendor(vendorID, page, limit int) ([]models.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	const countQuery = `SELECT COUNT(1) FROM products WHERE vendor_id = $1 AND deleted_at IS NULL`
	var total int
	if err := r.db.Get(&total, countQuery, vendorID); err != nil {
		return nil, 0, err
	}

	const listQuery = `SELECT * FROM products
	        WHERE vendor_id = $1 AND deleted_at IS NULL
	        ORDER BY created_at DESC, id DESC
	        LIMIT $2 OFFSET $3`
	var products []models.Product
	if err := r.db.Select(&products, listQuery, vendorID, limit, offset); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CountPublished returns the number of published, non-deleted products
// for a vendor. This is always computed from the authoritative row set,
// never from a cached counter.
func (r *ProductRepository) CountPublished(vendorID int) (int, error) {
	const q = `SELECT COUNT(1) FROM products
	           WHERE vendor_id = $1 AND published = true AND deleted_at IS NULL`
	var count int
	if err := r.db.Get(&count, q, vendorID); err != nil {
		return 0, err
	}
	return count, nil
}

// GetPublishedOldestFirst returns a vendor's published products in FIFO
// order. Ties on created_at are broken by id so the ordering is stable
// under same-timestamp inserts.
func (r *ProductRepository) GetPublishedOldestFirst(vendorID int) ([]models.Product, error) {
	const q = `SELECT * FROM products
	           WHERE vendor_id = $1 AND published = true AND deleted_at IS NULL
	           ORDER BY created_at ASC, id ASC`
	var products []models.Product
	if err := r.db.Select(&products, q, vendorID); err != nil {
		return nil, err
	}
	return products, nil
}

// UnpublishOldestExcess unpublishes the oldest published products above
// the given quota, all within one transaction. The published set is
// re-read with row locks inside the transaction so the selection cannot
// race a concurrent unpublish. Returns the affected products; either all
// targeted rows flip or none do.
func (r *ProductRepository) UnpublishOldestExcess(vendorID, quota int) ([]models.ProductRef, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const selectQ = `SELECT id, title FROM products
	        WHERE vendor_id = $1 AND published = true AND deleted_at IS NULL
	        ORDER BY created_at ASC, id ASC
	        FOR UPDATE`
	var published []models.ProductRef
	if err := tx.Select(&published, selectQ, vendorID); err != nil {
		return nil, err
	}

	excess := len(published) - quota
	if excess <= 0 {
		return nil, tx.Commit()
	}

	affected := published[:excess]
	ids := make([]int64, len(affected))
	for i, p := range affected {
		ids[i] = int64(p.ID)
	}

	const updateQ = `UPDATE products SET published = false, updated_at = NOW()
	        WHERE id = ANY($1)`
	if _, err := tx.Exec(updateQ, pq.Array(ids)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return affected, nil
}

// Create inserts a new product and populates generated fields.
func (r *ProductRepository) Create(product *models.Product) error {
	const q = `INSERT INTO products (vendor_id, title, description, price_cents, published)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q,
		product.VendorID,
		product.Title,
		product.Description,
		product.PriceCents,
		product.Published,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// Update updates an existing product's editable fields.
func (r *ProductRepository) Update(product *models.Product) error {
	const q = `UPDATE products
	           SET title = $1, description = $2, price_cents = $3, updated_at = NOW()
	           WHERE id = $4 AND deleted_at IS NULL
	           RETURNING updated_at`
	return r.db.QueryRowx(q,
		product.Title,
		product.Description,
		product.PriceCents,
		product.ID,
	).Scan(&product.UpdatedAt)
}

// SetPublished flips the published flag of a product. The database
// trigger remains the final backstop for the quota invariant.
func (r *ProductRepository) SetPublished(id int, published bool) error {
	const q = `UPDATE products SET published = $2, updated_at = NOW()
	           WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.Exec(q, id, published)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a product deleted and unpublishes it.
func (r *ProductRepository) SoftDelete(id int) error {
	const q = `UPDATE products
	           SET deleted_at = NOW(), published = false, updated_at = NOW()
	           WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.Exec(q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
