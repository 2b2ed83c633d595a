package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// TierService owns tier changes for vendors: validating the target tier
// against the catalog, persisting catalog attributes, and enforcing the
// product cap with FIFO unpublishing on downgrades.
type TierService struct {
	vendorRepo  *repository.VendorRepository
	productRepo *repository.ProductRepository
	userRepo    *repository.UserRepository
	notifier    *NotificationService
}

// NewTierService constructs a TierService.
func NewTierService(
	vendorRepo *repository.VendorRepository,
	productRepo *repository.ProductRepository,
	userRepo *repository.UserRepository,
	notifier *NotificationService,
) *TierService {
	return &TierService{
		vendorRepo:  vendorRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// EnforcementResult reports what a cap enforcement did.
type EnforcementResult struct {
	UnpublishedCount    int                 `json:"unpublishedCount"`
	UnpublishedProducts []models.ProductRef `json:"unpublishedProducts"`
}

// DowngradePreview reports what a cap enforcement would do, without
// mutating anything.
type DowngradePreview struct {
	WillUnpublish    bool                `json:"willUnpublish"`
	AffectedProducts []models.ProductRef `json:"affectedProducts"`
	PublishedCount   int                 `json:"publishedCount"`
	NewQuota         int                 `json:"newQuota"`
}

// EnforceProductCap unpublishes a vendor's oldest published products in
// excess of the target tier's quota. Within quota it is a no-op. The
// selection and the flip happen in one transaction so a concurrent
// unpublish cannot skew the read set; either every targeted row flips or
// none do.
func (s *TierService) EnforceProductCap(ctx context.Context, vendorID int, newTier models.Tier) (*EnforcementResult, error) {
	attrs, err := models.TierCatalogLookup(newTier)
	if err != nil {
		return nil, utils.ErrInvalidTier
	}

	affected, err := s.productRepo.UnpublishOldestExcess(vendorID, attrs.ProductQuota)
	if err != nil {
		log.Error().Err(err).Int("vendor_id", vendorID).Str("tier", string(newTier)).
			Msg("Cap enforcement failed")
		return nil, fmt.Errorf("enforce product cap: %w", err)
	}

	result := &EnforcementResult{
		UnpublishedCount:    len(affected),
		UnpublishedProducts: affected,
	}
	if result.UnpublishedCount > 0 {
		ids := make([]int, len(affected))
		for i, p := range affected {
			ids[i] = p.ID
		}
		log.Info().
			Int("vendor_id", vendorID).
			Str("new_tier", string(newTier)).
			Int("unpublished_count", result.UnpublishedCount).
			Ints("product_ids", ids).
			Msg("Products unpublished by cap enforcement")
	}
	return result, nil
}

// GetDowngradePreview returns the products a downgrade to newTier would
// unpublish. It uses the same ordering and excess formula as
// EnforceProductCap so the preview can never disagree with the eventual
// action on the same state.
func (s *TierService) GetDowngradePreview(ctx context.Context, vendorID int, newTier models.Tier) (*DowngradePreview, error) {
	attrs, err := models.TierCatalogLookup(newTier)
	if err != nil {
		return nil, utils.ErrInvalidTier
	}

	published, err := s.productRepo.GetPublishedOldestFirst(vendorID)
	if err != nil {
		return nil, fmt.Errorf("downgrade preview: %w", err)
	}

	preview := &DowngradePreview{
		PublishedCount:   len(published),
		NewQuota:         attrs.ProductQuota,
		AffectedProducts: []models.ProductRef{},
	}

	excess := len(published) - attrs.ProductQuota
	if excess <= 0 {
		return preview, nil
	}

	preview.WillUnpublish = true
	for _, p := range published[:excess] {
		preview.AffectedProducts = append(preview.AffectedProducts, models.ProductRef{ID: p.ID, Title: p.Title})
	}
	return preview, nil
}

// TierChangeResult reports the outcome of a tier change request.
type TierChangeResult struct {
	Vendor       *models.Vendor     `json:"vendor"`
	Changed      bool               `json:"changed"`
	WasDowngrade bool               `json:"wasDowngrade"`
	Enforcement  *EnforcementResult `json:"enforcement,omitempty"`
}

// ChangeTier moves a vendor to a new tier. Unknown tiers are rejected,
// a change to the current tier is an idempotent no-op, and only a
// transition to a strictly lower tier triggers cap enforcement. When
// products were unpublished, the vendor is notified asynchronously; the
// notification never blocks or fails the change itself.
func (s *TierService) ChangeTier(ctx context.Context, vendorID int, newTier models.Tier) (*TierChangeResult, error) {
	attrs, err := models.TierCatalogLookup(newTier)
	if err != nil {
		return nil, utils.ErrInvalidTier
	}

	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, utils.ErrVendorNotFound
	}

	if vendor.Tier == newTier {
		return &TierChangeResult{Vendor: vendor, Changed: false}, nil
	}
	oldTier := vendor.Tier

	if err := s.vendorRepo.UpdateTierAttributes(vendorID, newTier, attrs.ProductQuota, attrs.CommissionRate, attrs.CanSell); err != nil {
		return nil, fmt.Errorf("persist tier change: %w", err)
	}
	vendor.Tier = newTier
	vendor.ProductQuota = attrs.ProductQuota
	vendor.CommissionRate = attrs.CommissionRate
	vendor.CanSellProducts = attrs.CanSell

	result := &TierChangeResult{Vendor: vendor, Changed: true}

	if !models.IsDowngrade(oldTier, newTier) {
		log.Info().Int("vendor_id", vendorID).
			Str("from", string(oldTier)).Str("to", string(newTier)).
			Msg("Tier upgraded")
		return result, nil
	}

	result.WasDowngrade = true
	enforcement, err := s.EnforceProductCap(ctx, vendorID, newTier)
	if err != nil {
		// The tier itself changed; surface the enforcement failure so the
		// caller knows products may still exceed the new quota. The
		// database trigger keeps blocking further publishes regardless.
		return nil, err
	}
	result.Enforcement = enforcement

	if enforcement.UnpublishedCount > 0 {
		go s.notifyDowngrade(vendor, newTier, enforcement.UnpublishedProducts)
	}
	return result, nil
}

// notifyDowngrade resolves the vendor's email and sends the downgrade
// notice. Fire-and-forget: failures are logged, never propagated.
func (s *TierService) notifyDowngrade(vendor *models.Vendor, newTier models.Tier, products []models.ProductRef) {
	user, err := s.userRepo.GetByID(vendor.UserID)
	if err != nil || user.Email == "" {
		log.Warn().Int("vendor_id", vendor.ID).Msg("No notification email for downgraded vendor")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := s.notifier.SendDowngradeNotice(ctx, user.Email, vendor.BusinessName, newTier, products); err != nil {
		log.Error().Err(err).Int("vendor_id", vendor.ID).Msg("Failed to send downgrade notice")
	}
}
