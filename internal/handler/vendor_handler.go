package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// VendorHandler handles vendor onboarding and admin vendor management.
type VendorHandler struct {
	vendorService *service.VendorService
}

// NewVendorHandler constructs a VendorHandler.
func NewVendorHandler(vendorService *service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// Onboard registers a new vendor account. The response carries the API
// keys exactly once; they are never returned again.
func (h *VendorHandler) Onboard(c *gin.Context) {
	var req service.OnboardVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	vendor, err := h.vendorService.Onboard(&req)
	if err != nil {
		switch err {
		case utils.ErrEmailExists:
			utils.Error(c, 409, "EMAIL_EXISTS", "An account with this email already exists")
		case utils.ErrDuplicateSlug:
			utils.Error(c, 409, "DUPLICATE_SLUG", "This storefront slug is already taken")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to onboard vendor")
		}
		return
	}

	utils.Success(c, 201, "Vendor onboarded successfully", gin.H{
		"vendor":  vendor,
		"apiKey":  vendor.APIKey,
		"testKey": vendor.TestKey,
	})
}

// ListVendors returns vendors for the admin surface with filters.
func (h *VendorHandler) ListVendors(c *gin.Context) {
	filter := &repository.VendorFilter{
		Tier:   c.Query("tier"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	vendors, total, err := h.vendorService.List(filter)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list vendors")
		return
	}

	utils.SuccessWithPagination(c, 200, "Vendors retrieved successfully", gin.H{
		"vendors": vendors,
	}, filter.Page, filter.Limit, total)
}

// SetVendorStatus activates or suspends a vendor account.
func (h *VendorHandler) SetVendorStatus(c *gin.Context) {
	vendorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid vendor id")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=active suspended"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Status must be active or suspended")
		return
	}

	vendor, err := h.vendorService.SetStatus(vendorID, models.VendorStatus(req.Status))
	if err != nil {
		if err == utils.ErrVendorNotFound {
			utils.Error(c, 404, "VENDOR_NOT_FOUND", "Vendor not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update vendor status")
		return
	}

	utils.Success(c, 200, "Vendor status updated", vendor)
}
