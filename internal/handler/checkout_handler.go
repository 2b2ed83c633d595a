package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/service"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

// CheckoutHandler handles public buyer checkout for vendor products.
type CheckoutHandler struct {
	vendorRepo     *repository.VendorRepository
	productRepo    *repository.ProductRepository
	paymentService *service.PaymentService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(vendorRepo *repository.VendorRepository, productRepo *repository.ProductRepository, paymentService *service.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{
		vendorRepo:     vendorRepo,
		productRepo:    productRepo,
		paymentService: paymentService,
	}
}

// CreateProductCheckout creates a checkout session for a published
// product. POST /v1/checkout/:vendorSlug/:productId
func (h *CheckoutHandler) CreateProductCheckout(c *gin.Context) {
	vendor, err := h.vendorRepo.GetBySlug(c.Param("vendorSlug"))
	if err != nil {
		utils.Error(c, 404, "VENDOR_NOT_FOUND", "Vendor not found")
		return
	}
	if !vendor.IsActive() {
		utils.Error(c, 404, "VENDOR_NOT_FOUND", "Vendor not found")
		return
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid product id")
		return
	}

	product, err := h.productRepo.GetByID(productID)
	if err != nil || product.VendorID != vendor.ID || !product.Published {
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
		return
	}

	sess, err := h.paymentService.CreateProductCheckout(vendor, product)
	if err != nil {
		log.Error().Err(err).Int("product_id", product.ID).
			Msg("Failed to create product checkout session")
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to create checkout session")
		return
	}

	utils.Success(c, 200, "Checkout session created", gin.H{
		"sessionId":   sess.ID,
		"checkoutUrl": sess.URL,
	})
}
