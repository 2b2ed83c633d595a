package service

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// OnboardVendorRequest is the payload for vendor onboarding.
type OnboardVendorRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Name         string `json:"name" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	BusinessName string `json:"businessName" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
}

// VendorService owns vendor onboarding and admin vendor management.
type VendorService struct {
	userRepo   *repository.UserRepository
	vendorRepo *repository.VendorRepository
	payments   *PaymentService
}

// NewVendorService constructs a VendorService.
func NewVendorService(userRepo *repository.UserRepository, vendorRepo *repository.VendorRepository, payments *PaymentService) *VendorService {
	return &VendorService{
		userRepo:   userRepo,
		vendorRepo: vendorRepo,
		payments:   payments,
	}
}

// Onboard creates a user and vendor pair on the starting tier, with
// fresh API keys and a Stripe Connect account. The Connect account is
// created before the vendor insert; if the insert fails the account is
// deleted so no orphaned Stripe account survives a partial failure.
func (s *VendorService) Onboard(req *OnboardVendorRequest) (*models.Vendor, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: string(hashed),
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, utils.ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	liveKey, err := utils.GenerateLiveKey()
	if err != nil {
		return nil, err
	}
	testKey, err := utils.GenerateTestKey()
	if err != nil {
		return nil, err
	}

	startTier := models.TierNone
	attrs, err := models.TierCatalogLookup(startTier)
	if err != nil {
		return nil, err
	}

	accountID, err := s.payments.CreateConnectAccount(user.Email, req.BusinessName)
	if err != nil {
		return nil, fmt.Errorf("provision payment account: %w", err)
	}

	vendor := &models.Vendor{
		UserID:          user.ID,
		BusinessName:    req.BusinessName,
		Slug:            strings.ToLower(strings.TrimSpace(req.Slug)),
		Tier:            startTier,
		ProductQuota:    attrs.ProductQuota,
		CommissionRate:  attrs.CommissionRate,
		CanSellProducts: attrs.CanSell,
		VendorStatus:    models.VendorStatusActive,
		StripeAccountID: accountID,
		APIKey:          liveKey,
		TestKey:         testKey,
	}
	if err := s.vendorRepo.Create(vendor); err != nil {
		// Roll back the Connect account so the partial failure leaves no
		// orphaned Stripe state behind.
		s.payments.DeleteAccount(accountID)
		if isUniqueViolation(err) {
			return nil, utils.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	log.Info().Int("vendor_id", vendor.ID).Str("slug", vendor.Slug).
		Msg("Vendor onboarded")
	return vendor, nil
}

// SetStatus activates or suspends a vendor. Suspension of featured
// slots is handled by the slot expiry worker's next pass.
func (s *VendorService) SetStatus(vendorID int, status models.VendorStatus) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(vendorID)
	if err != nil {
		return nil, utils.ErrVendorNotFound
	}
	if err := s.vendorRepo.UpdateStatus(vendorID, status); err != nil {
		return nil, fmt.Errorf("update vendor status: %w", err)
	}
	vendor.VendorStatus = status
	log.Info().Int("vendor_id", vendorID).Str("status", string(status)).
		Msg("Vendor status changed")
	return vendor, nil
}

// List returns vendors for the admin surface.
func (s *VendorService) List(filter *repository.VendorFilter) ([]models.Vendor, int, error) {
	return s.vendorRepo.List(filter)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
