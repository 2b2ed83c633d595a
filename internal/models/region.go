package models

import "time"

// Region represents a local government area (LGA) used to cap
// featured-slot concurrency. SlotCapacity is the maximum number of
// concurrently reserved or active featured slots in the region.
type Region struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Slug           string    `db:"slug" json:"slug"`
	SlotCapacity   int       `db:"slot_capacity" json:"slotCapacity"`
	SlotPriceCents int64     `db:"slot_price_cents" json:"slotPriceCents"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
