package models

import "time"

// Product represents a digital product listed by a vendor.
// created_at is the FIFO ordering key for downgrade enforcement:
// when a vendor's quota shrinks, the oldest published products are
// unpublished first (ties broken by id).
type Product struct {
	ID          int        `db:"id" json:"id"`
	VendorID    int        `db:"vendor_id" json:"vendorId"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	PriceCents  int64      `db:"price_cents" json:"priceCents"`
	Published   bool       `db:"published" json:"published"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// ProductRef identifies a product in downgrade results and
// notification payloads.
type ProductRef struct {
	ID    int    `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}
