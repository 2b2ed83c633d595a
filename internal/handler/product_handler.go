package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suburbmates/suburbmates-api/internal/middleware"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// ProductHandler handles vendor product HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProduct adds a product for the authenticated vendor.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.Create(vendor, &req)
	if err != nil {
		switch err {
		case utils.ErrSellingDisabled:
			utils.Error(c, 403, "SELLING_DISABLED", "Current tier does not allow selling products")
		case utils.ErrQuotaExceeded:
			utils.Error(c, 409, "QUOTA_EXCEEDED", "Published product quota reached for current tier")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create product")
		}
		return
	}

	utils.Success(c, 201, "Product created successfully", product)
}

// GetProducts returns the vendor's products with pagination.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	vendor := middleware.GetVendor(c)

	// pagination
	page := 1
	limit := 50
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	products, total, err := h.productService.List(vendor.ID, page, limit)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get products")
		return
	}

	utils.SuccessWithPagination(c, 200, "Products retrieved successfully", gin.H{
		"products": products,
	}, page, limit, total)
}

// GetProduct returns one of the vendor's products.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	product, err := h.productService.Get(vendor.ID, productID)
	if err != nil {
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}

	utils.Success(c, 200, "Product retrieved successfully", product)
}

// UpdateProduct edits a product's fields.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	product, err := h.productService.Update(vendor.ID, productID, &req)
	if err != nil {
		if err == utils.ErrProductNotFound {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update product")
		return
	}

	utils.Success(c, 200, "Product updated successfully", product)
}

// PublishProduct makes a product visible, subject to the vendor's quota.
func (h *ProductHandler) PublishProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	product, err := h.productService.Publish(vendor, productID)
	if err != nil {
		switch err {
		case utils.ErrProductNotFound:
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		case utils.ErrSellingDisabled:
			utils.Error(c, 403, "SELLING_DISABLED", "Current tier does not allow selling products")
		case utils.ErrQuotaExceeded:
			utils.Error(c, 409, "QUOTA_EXCEEDED", "Published product quota reached for current tier")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to publish product")
		}
		return
	}

	utils.Success(c, 200, "Product published successfully", product)
}

// UnpublishProduct hides a product.
func (h *ProductHandler) UnpublishProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	product, err := h.productService.Unpublish(vendor.ID, productID)
	if err != nil {
		if err == utils.ErrProductNotFound {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to unpublish product")
		return
	}

	utils.Success(c, 200, "Product unpublished successfully", product)
}

// DeleteProduct soft-deletes a product.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	vendor := middleware.GetVendor(c)
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	if err := h.productService.Delete(vendor.ID, productID); err != nil {
		if err == utils.ErrProductNotFound {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to delete product")
		return
	}

	utils.Success(c, 200, "Product deleted successfully", nil)
}
