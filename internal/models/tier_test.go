package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierCatalogLookup_KnownTiers(t *testing.T) {
	tests := []struct {
		tier    Tier
		quota   int
		canSell bool
	}{
		{TierNone, 0, false},
		{TierBasic, 3, true},
		{TierPro, 10, true},
		{TierPremium, 50, true},
		{TierSuspended, 0, false},
	}

	for _, tt := range tests {
		attrs, err := TierCatalogLookup(tt.tier)
		require.NoError(t, err, "tier %s", tt.tier)
		assert.Equal(t, tt.quota, attrs.ProductQuota, "tier %s quota", tt.tier)
		assert.Equal(t, tt.canSell, attrs.CanSell, "tier %s canSell", tt.tier)
	}
}

func TestTierCatalogLookup_UnknownTier(t *testing.T) {
	_, err := TierCatalogLookup(Tier("platinum"))
	assert.ErrorIs(t, err, ErrUnsupportedTier)

	_, err = TierCatalogLookup(Tier(""))
	assert.ErrorIs(t, err, ErrUnsupportedTier)
}

func TestIsValidTier(t *testing.T) {
	for _, tier := range AllTiers() {
		assert.True(t, IsValidTier(tier))
	}
	assert.False(t, IsValidTier(Tier("gold")))
}

func TestIsDowngrade(t *testing.T) {
	// Moving down the ladder is a downgrade.
	assert.True(t, IsDowngrade(TierPremium, TierPro))
	assert.True(t, IsDowngrade(TierPro, TierBasic))
	assert.True(t, IsDowngrade(TierBasic, TierNone))
	assert.True(t, IsDowngrade(TierNone, TierSuspended))
	assert.True(t, IsDowngrade(TierPremium, TierSuspended))

	// Upgrades and same-tier moves are not.
	assert.False(t, IsDowngrade(TierBasic, TierPro))
	assert.False(t, IsDowngrade(TierSuspended, TierPremium))
	assert.False(t, IsDowngrade(TierPro, TierPro))

	// Unknown tiers never count as downgrades.
	assert.False(t, IsDowngrade(Tier("gold"), TierBasic))
	assert.False(t, IsDowngrade(TierPremium, Tier("gold")))
}

func TestCommissionRatesDescendWithTier(t *testing.T) {
	basic, _ := TierCatalogLookup(TierBasic)
	pro, _ := TierCatalogLookup(TierPro)
	premium, _ := TierCatalogLookup(TierPremium)

	assert.True(t, basic.CommissionRate.GreaterThan(pro.CommissionRate))
	assert.True(t, pro.CommissionRate.GreaterThan(premium.CommissionRate))
}
