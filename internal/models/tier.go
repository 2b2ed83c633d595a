package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier enumerates the vendor plan tiers.
type Tier string

const (
	TierNone      Tier = "none"
	TierBasic     Tier = "basic"
	TierPro       Tier = "pro"
	TierPremium   Tier = "premium"
	TierSuspended Tier = "suspended"
)

// ErrUnsupportedTier is returned when a tier name is not in the catalog.
var ErrUnsupportedTier = fmt.Errorf("UNSUPPORTED_TIER")

// TierAttributes holds the plan attributes associated with a tier.
type TierAttributes struct {
	ProductQuota   int             `json:"productQuota"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	MonthlyFee     decimal.Decimal `json:"monthlyFee"`
	CanSell        bool            `json:"canSell"`
	StorageQuotaGB int             `json:"storageQuotaGb"`
}

// tierCatalog is the single authoritative source of per-tier numbers.
// The database trigger enforcing the publish quota reads
// vendors.product_quota, which is only ever written from this catalog.
var tierCatalog = map[Tier]TierAttributes{
	TierNone: {
		ProductQuota:   0,
		CommissionRate: decimal.Zero,
		MonthlyFee:     decimal.Zero,
		CanSell:        false,
		StorageQuotaGB: 0,
	},
	TierBasic: {
		ProductQuota:   3,
		CommissionRate: decimal.NewFromFloat(0.12),
		MonthlyFee:     decimal.NewFromFloat(9.95),
		CanSell:        true,
		StorageQuotaGB: 1,
	},
	TierPro: {
		ProductQuota:   10,
		CommissionRate: decimal.NewFromFloat(0.08),
		MonthlyFee:     decimal.NewFromFloat(29.95),
		CanSell:        true,
		StorageQuotaGB: 5,
	},
	TierPremium: {
		ProductQuota:   50,
		CommissionRate: decimal.NewFromFloat(0.05),
		MonthlyFee:     decimal.NewFromFloat(79.95),
		CanSell:        true,
		StorageQuotaGB: 20,
	},
	TierSuspended: {
		ProductQuota:   0,
		CommissionRate: decimal.Zero,
		MonthlyFee:     decimal.Zero,
		CanSell:        false,
		StorageQuotaGB: 0,
	},
}

// tierPriority is an explicit total order over tiers.
// Lower number = higher tier. A change to a strictly larger priority
// value is a downgrade.
var tierPriority = map[Tier]int{
	TierPremium:   0,
	TierPro:       1,
	TierBasic:     2,
	TierNone:      3,
	TierSuspended: 4,
}

// TierCatalogLookup returns the attributes for a tier, or
// ErrUnsupportedTier when the name is not in the catalog. Callers must
// not substitute a default for an unknown tier.
func TierCatalogLookup(t Tier) (TierAttributes, error) {
	attrs, ok := tierCatalog[t]
	if !ok {
		return TierAttributes{}, ErrUnsupportedTier
	}
	return attrs, nil
}

// IsValidTier reports whether the tier name exists in the catalog.
func IsValidTier(t Tier) bool {
	_, ok := tierCatalog[t]
	return ok
}

// IsDowngrade reports whether moving from one tier to another is a
// downgrade. Equal-priority transitions are not downgrades.
func IsDowngrade(from, to Tier) bool {
	fp, fok := tierPriority[from]
	tp, tok := tierPriority[to]
	if !fok || !tok {
		return false
	}
	return tp > fp
}

// AllTiers returns the tiers in priority order, highest first.
func AllTiers() []Tier {
	return []Tier{TierPremium, TierPro, TierBasic, TierNone, TierSuspended}
}
