package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorStatus enumerates the vendor account states.
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "active"
	VendorStatusSuspended VendorStatus = "suspended"
)

// Vendor represents a seller account tied to one user.
// Vendors are never hard-deleted; suspension is a status change only.
// API keys are omitted from JSON responses except where explicitly
// returned at creation time.
type Vendor struct {
	ID              int             `db:"id" json:"id"`
	UserID          int             `db:"user_id" json:"userId"`
	BusinessName    string          `db:"business_name" json:"businessName"`
	Slug            string          `db:"slug" json:"slug"`
	Tier            Tier            `db:"tier" json:"tier"`
	ProductQuota    int             `db:"product_quota" json:"productQuota"`
	CommissionRate  decimal.Decimal `db:"commission_rate" json:"commissionRate"`
	CanSellProducts bool            `db:"can_sell_products" json:"canSellProducts"`
	VendorStatus    VendorStatus    `db:"vendor_status" json:"vendorStatus"`
	StripeAccountID string          `db:"stripe_account_id" json:"-"`
	APIKey          string          `db:"api_key" json:"apiKey,omitempty"`
	TestKey         string          `db:"test_key" json:"testKey,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the vendor may act on the marketplace.
func (v *Vendor) IsActive() bool {
	return v.VendorStatus == VendorStatusActive
}
