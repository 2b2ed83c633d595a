package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken     = errors.New("INVALID_TOKEN")
	ErrInvalidVendor    = errors.New("INVALID_VENDOR")
	ErrInvalidTier      = errors.New("INVALID_TIER")
	ErrQuotaExceeded    = errors.New("QUOTA_EXCEEDED")
	ErrSellingDisabled  = errors.New("SELLING_DISABLED")
	ErrVendorNotFound   = errors.New("VENDOR_NOT_FOUND")
	ErrVendorSuspended  = errors.New("VENDOR_SUSPENDED")
	ErrProductNotFound  = errors.New("PRODUCT_NOT_FOUND")
	ErrRegionNotFound   = errors.New("REGION_NOT_FOUND")
	ErrRegionInactive   = errors.New("REGION_INACTIVE")
	ErrSlotNotFound     = errors.New("SLOT_NOT_FOUND")
	ErrDuplicateSlug    = errors.New("DUPLICATE_SLUG")
	ErrEmailExists      = errors.New("EMAIL_EXISTS")
	ErrMissingStripeAcc = errors.New("STRIPE_ACCOUNT_MISSING")
)
