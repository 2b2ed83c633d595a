package handler

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// RegionHandler handles the public region listing and admin region CRUD.
type RegionHandler struct {
	regionRepo *repository.RegionRepository
}

// NewRegionHandler constructs a RegionHandler.
func NewRegionHandler(regionRepo *repository.RegionRepository) *RegionHandler {
	return &RegionHandler{regionRepo: regionRepo}
}

// GetRegions returns all regions.
func (h *RegionHandler) GetRegions(c *gin.Context) {
	regions, err := h.regionRepo.GetAll()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get regions")
		return
	}

	utils.Success(c, 200, "Regions retrieved successfully", gin.H{
		"regions": regions,
	})
}

type regionRequest struct {
	Name           string `json:"name" binding:"required"`
	Slug           string `json:"slug" binding:"required"`
	SlotCapacity   int    `json:"slotCapacity" binding:"required,min=1"`
	SlotPriceCents int64  `json:"slotPriceCents" binding:"required,min=0"`
	IsActive       *bool  `json:"isActive"`
}

// CreateRegion adds a new region (admin).
func (h *RegionHandler) CreateRegion(c *gin.Context) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	region := &models.Region{
		Name:           req.Name,
		Slug:           strings.ToLower(strings.TrimSpace(req.Slug)),
		SlotCapacity:   req.SlotCapacity,
		SlotPriceCents: req.SlotPriceCents,
		IsActive:       true,
	}
	if req.IsActive != nil {
		region.IsActive = *req.IsActive
	}

	if err := h.regionRepo.Create(region); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			utils.Error(c, 409, "DUPLICATE_SLUG", "A region with this slug already exists")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create region")
		return
	}

	utils.Success(c, 201, "Region created successfully", region)
}

// UpdateRegion edits a region (admin). Shrinking slot_capacity never
// evicts active slots; the region simply stops accepting new
// reservations until attrition brings it under the new cap.
func (h *RegionHandler) UpdateRegion(c *gin.Context) {
	regionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid region id")
		return
	}

	region, err := h.regionRepo.GetByID(regionID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.Error(c, 404, "REGION_NOT_FOUND", "Region not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get region")
		return
	}

	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	region.Name = req.Name
	region.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	region.SlotCapacity = req.SlotCapacity
	region.SlotPriceCents = req.SlotPriceCents
	if req.IsActive != nil {
		region.IsActive = *req.IsActive
	}

	if err := h.regionRepo.Update(region); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			utils.Error(c, 409, "DUPLICATE_SLUG", "A region with this slug already exists")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update region")
		return
	}

	utils.Success(c, 200, "Region updated successfully", region)
}
