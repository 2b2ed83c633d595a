package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/suburbmates/suburbmates-api/internal/middleware"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// FeaturedHandler handles featured-slot endpoints: vendor reservation
// and queue management, plus the admin slot listing.
type FeaturedHandler struct {
	featuredService *service.FeaturedService
	slotRepo        *repository.FeaturedSlotRepository
	regionRepo      *repository.RegionRepository
}

// NewFeaturedHandler constructs a FeaturedHandler.
func NewFeaturedHandler(featuredService *service.FeaturedService, slotRepo *repository.FeaturedSlotRepository, regionRepo *repository.RegionRepository) *FeaturedHandler {
	return &FeaturedHandler{
		featuredService: featuredService,
		slotRepo:        slotRepo,
		regionRepo:      regionRepo,
	}
}

// Reserve attempts a featured-slot reservation in a region. A full
// region is a 200 with status "queued", never an error.
func (h *FeaturedHandler) Reserve(c *gin.Context) {
	vendor := middleware.GetVendor(c)

	var req struct {
		Region string `json:"region" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	outcome, err := h.featuredService.ReserveSlot(c.Request.Context(), vendor, req.Region)
	if err != nil {
		switch err {
		case utils.ErrRegionNotFound:
			utils.Error(c, 404, "REGION_NOT_FOUND", "Region not found: "+req.Region)
		case utils.ErrRegionInactive:
			utils.Error(c, 400, "REGION_INACTIVE", "Region is not accepting featured placements")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to reserve featured slot")
		}
		return
	}

	msg := "Featured slot reserved"
	if outcome.Status == service.ReservationStatusQueued {
		msg = "Region at capacity, added to waiting queue"
	}
	utils.Success(c, 200, msg, outcome)
}

// QueueStatus returns the vendor's waiting-queue entry and position in
// a region.
func (h *FeaturedHandler) QueueStatus(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	regionSlug := c.Param("regionSlug")

	entry, position, err := h.featuredService.QueueStatus(vendor.ID, regionSlug)
	if err != nil {
		switch err {
		case utils.ErrRegionNotFound:
			utils.Error(c, 404, "REGION_NOT_FOUND", "Region not found: "+regionSlug)
		case sql.ErrNoRows:
			utils.Error(c, 404, "NOT_QUEUED", "Vendor is not in this region's queue")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get queue status")
		}
		return
	}

	utils.Success(c, 200, "Queue status retrieved", gin.H{
		"entry":    entry,
		"position": position,
	})
}

// LeaveQueue cancels the vendor's waiting entry in a region.
func (h *FeaturedHandler) LeaveQueue(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	regionSlug := c.Param("regionSlug")

	if err := h.featuredService.LeaveQueue(vendor.ID, regionSlug); err != nil {
		if err == utils.ErrRegionNotFound {
			utils.Error(c, 404, "REGION_NOT_FOUND", "Region not found: "+regionSlug)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to leave queue")
		return
	}

	utils.Success(c, 200, "Left the waiting queue", nil)
}

// ListSlots returns a region's featured slots for the admin surface.
func (h *FeaturedHandler) ListSlots(c *gin.Context) {
	regionSlug := c.Query("region")
	if regionSlug == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Missing region query parameter")
		return
	}

	region, err := h.regionRepo.GetBySlug(regionSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.Error(c, 404, "REGION_NOT_FOUND", "Region not found: "+regionSlug)
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to resolve region")
		return
	}

	slots, err := h.slotRepo.ListByRegion(region.ID, c.Query("status"))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list featured slots")
		return
	}

	utils.Success(c, 200, "Featured slots retrieved", gin.H{
		"slots": slots,
	})
}
