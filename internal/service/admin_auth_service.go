package service

import (
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// AdminAuthService authenticates admin users against the users table.
type AdminAuthService struct {
	userRepo *repository.UserRepository
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(userRepo *repository.UserRepository) *AdminAuthService {
	return &AdminAuthService{userRepo: userRepo}
}

// Login verifies credentials and mints an admin JWT.
func (s *AdminAuthService) Login(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		log.Warn().Str("email", email).Msg("Login failed: unknown email")
		return "", errors.New("invalid credentials")
	}

	if !user.IsAdmin {
		log.Warn().Str("email", email).Msg("Login failed: not an admin")
		return "", errors.New("invalid credentials")
	}
	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Login failed: account inactive")
		return "", errors.New("account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Login failed: bad password")
		return "", errors.New("invalid credentials")
	}

	return utils.GenerateJWT(user.ID, user.Email)
}
