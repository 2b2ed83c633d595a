package service

import (
	"strings"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// AuthService validates vendor API keys for request authentication.
type AuthService struct {
	vendorRepo *repository.VendorRepository
}

// NewAuthService constructs an AuthService.
func NewAuthService(vendorRepo *repository.VendorRepository) *AuthService {
	return &AuthService{vendorRepo: vendorRepo}
}

// ValidateAPIKey resolves a live or test API key to its vendor. The
// second return value reports test mode.
func (s *AuthService) ValidateAPIKey(key string) (*models.Vendor, bool, error) {
	if !strings.HasPrefix(key, "sm_live_") && !strings.HasPrefix(key, "sm_test_") {
		return nil, false, utils.ErrInvalidToken
	}
	vendor, isTest, err := s.vendorRepo.GetByAPIKey(key)
	if err != nil {
		return nil, false, utils.ErrInvalidToken
	}
	return vendor, isTest, nil
}
