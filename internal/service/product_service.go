package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"required,min=50"`
	Published   bool   `json:"published"`
}

// UpdateProductRequest is the payload for updating a product.
type UpdateProductRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"priceCents"`
}

// ProductService owns vendor product CRUD and publish/unpublish with
// quota checks. The application-level quota check fails fast with a
// friendly error; the database trigger is the enforcement of record and
// its violation is translated to the same error when a race slips past
// the pre-check.
type ProductService struct {
	productRepo *repository.ProductRepository
}

// NewProductService constructs a ProductService.
func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create adds a product for the vendor. Publishing at creation counts
// against the quota.
func (s *ProductService) Create(vendor *models.Vendor, req *CreateProductRequest) (*models.Product, error) {
	if !vendor.CanSellProducts {
		return nil, utils.ErrSellingDisabled
	}

	if req.Published {
		if err := s.checkQuota(vendor); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		VendorID:    vendor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Published:   req.Published,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, translateQuotaViolation(err)
	}
	return product, nil
}

// List returns the vendor's products with pagination.
func (s *ProductService) List(vendorID, page, limit int) ([]models.Product, int, error) {
	return s.productRepo.GetAllByVendor(vendorID, page, limit)
}

// Get returns one of the vendor's products.
func (s *ProductService) Get(vendorID, productID int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, utils.ErrProductNotFound
	}
	if product.VendorID != vendorID {
		return nil, utils.ErrProductNotFound
	}
	return product, nil
}

// Update edits a product's fields.
func (s *ProductService) Update(vendorID, productID int, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.Get(vendorID, productID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

// Publish makes a product visible, subject to the vendor's quota.
func (s *ProductService) Publish(vendor *models.Vendor, productID int) (*models.Product, error) {
	product, err := s.Get(vendor.ID, productID)
	if err != nil {
		return nil, err
	}
	if product.Published {
		return product, nil
	}
	if !vendor.CanSellProducts {
		return nil, utils.ErrSellingDisabled
	}

	if err := s.checkQuota(vendor); err != nil {
		return nil, err
	}

	if err := s.productRepo.SetPublished(productID, true); err != nil {
		return nil, translateQuotaViolation(err)
	}
	product.Published = true
	return product, nil
}

// Unpublish hides a product. Always allowed.
func (s *ProductService) Unpublish(vendorID, productID int) (*models.Product, error) {
	product, err := s.Get(vendorID, productID)
	if err != nil {
		return nil, err
	}
	if !product.Published {
		return product, nil
	}
	if err := s.productRepo.SetPublished(productID, false); err != nil {
		return nil, fmt.Errorf("unpublish product: %w", err)
	}
	product.Published = false
	return product, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(vendorID, productID int) error {
	if _, err := s.Get(vendorID, productID); err != nil {
		return err
	}
	if err := s.productRepo.SoftDelete(productID); err != nil {
		if err == sql.ErrNoRows {
			return utils.ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// checkQuota is the fail-fast application pre-check against the
// vendor's effective quota, computed from the authoritative row set.
func (s *ProductService) checkQuota(vendor *models.Vendor) error {
	count, err := s.productRepo.CountPublished(vendor.ID)
	if err != nil {
		return fmt.Errorf("count published products: %w", err)
	}
	if count >= vendor.ProductQuota {
		log.Debug().Int("vendor_id", vendor.ID).Int("published", count).
			Int("quota", vendor.ProductQuota).Msg("Publish blocked by quota")
		return utils.ErrQuotaExceeded
	}
	return nil
}

// translateQuotaViolation maps the quota trigger's raised exception to
// the user-facing quota error instead of a generic failure.
func translateQuotaViolation(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if strings.Contains(pqErr.Message, "PRODUCT_QUOTA_EXCEEDED") {
			return utils.ErrQuotaExceeded
		}
	}
	return err
}
