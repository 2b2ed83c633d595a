package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// AuthMiddleware handles vendor API key authentication.
type AuthMiddleware struct {
	authService *service.AuthService
	rateLimiter *InvalidAuthRateLimiter
}

// NewAuthMiddleware constructs a new AuthMiddleware.
func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		rateLimiter: NewInvalidAuthRateLimiter(),
	}
}

// Handle returns a Gin middleware function that enforces authentication.
func (m *AuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Bearer token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.handleAuthError(c, "INVALID_TOKEN", "Missing or invalid authorization header")
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// 2. Validate API key (live or test)
		vendor, isTest, err := m.authService.ValidateAPIKey(token)
		if err != nil || vendor == nil {
			m.handleAuthError(c, "INVALID_TOKEN", "Invalid API token")
			return
		}

		// 3. Check if vendor is active
		if !vendor.IsActive() {
			m.handleAuthError(c, "VENDOR_SUSPENDED", "Vendor account is not active")
			return
		}

		// 4. Set context values
		c.Set("vendor", vendor)
		c.Set("is_test", isTest)
		c.Set("vendor_id", vendor.ID)

		c.Next()
	}
}

func (m *AuthMiddleware) handleAuthError(c *gin.Context, code, message string) {
	// Apply rate limit for invalid auth attempts
	ip := c.ClientIP()
	if !m.rateLimiter.Allow(ip) {
		utils.Error(c, 429, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}

	utils.Error(c, 401, code, message)
	c.Abort()
}

// GetVendor returns the authenticated vendor from context.
func GetVendor(c *gin.Context) *models.Vendor {
	vendor, _ := c.Get("vendor")
	if vendor == nil {
		return nil
	}
	return vendor.(*models.Vendor)
}

// IsTestMode indicates whether the request used a test API key.
func IsTestMode(c *gin.Context) bool {
	isTest, _ := c.Get("is_test")
	if isTest == nil {
		return false
	}
	return isTest.(bool)
}
