package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/suburbmates/suburbmates-api/internal/middleware"
	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// TierHandler handles tier-related HTTP endpoints for vendors.
type TierHandler struct {
	tierService *service.TierService
}

// NewTierHandler constructs a TierHandler.
func NewTierHandler(tierService *service.TierService) *TierHandler {
	return &TierHandler{tierService: tierService}
}

// GetTier returns the authenticated vendor's current tier and its
// catalog attributes.
func (h *TierHandler) GetTier(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	attrs, err := models.TierCatalogLookup(vendor.Tier)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Unknown vendor tier")
		return
	}

	utils.Success(c, 200, "Tier retrieved successfully", gin.H{
		"tier":           vendor.Tier,
		"productQuota":   attrs.ProductQuota,
		"commissionRate": attrs.CommissionRate,
		"monthlyFee":     attrs.MonthlyFee,
		"canSell":        attrs.CanSell,
		"storageQuotaGb": attrs.StorageQuotaGB,
	})
}

// ChangeTier moves the vendor to a new tier. Downgrades report what was
// unpublished in the response.
func (h *TierHandler) ChangeTier(c *gin.Context) {
	vendor := middleware.GetVendor(c)

	var req struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.tierService.ChangeTier(c.Request.Context(), vendor.ID, models.Tier(req.Tier))
	if err != nil {
		switch err {
		case utils.ErrInvalidTier:
			utils.Error(c, 400, "INVALID_TIER", "Unsupported tier: "+req.Tier)
		case utils.ErrVendorNotFound:
			utils.Error(c, 404, "VENDOR_NOT_FOUND", "Vendor not found")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to change tier")
		}
		return
	}

	msg := "Tier unchanged"
	if result.Changed {
		msg = "Tier changed successfully"
	}
	utils.Success(c, 200, msg, result)
}

// PreviewDowngrade reports which products a move to the target tier
// would unpublish, without changing anything.
func (h *TierHandler) PreviewDowngrade(c *gin.Context) {
	vendor := middleware.GetVendor(c)

	target := c.Query("tier")
	if target == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Missing tier query parameter")
		return
	}

	preview, err := h.tierService.GetDowngradePreview(c.Request.Context(), vendor.ID, models.Tier(target))
	if err != nil {
		if err == utils.ErrInvalidTier {
			utils.Error(c, 400, "INVALID_TIER", "Unsupported tier: "+target)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to compute downgrade preview")
		return
	}

	utils.Success(c, 200, "Downgrade preview computed", preview)
}
