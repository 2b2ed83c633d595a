package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/account"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/suburbmates/suburbmates-api/internal/models"
)

// PaymentService wraps the Stripe operations used by the marketplace:
// Connect account provisioning at vendor onboarding and checkout session
// creation for featured slots and product purchases.
type PaymentService struct {
	successURL string
	cancelURL  string
}

// NewPaymentService configures the global Stripe key and returns the service.
func NewPaymentService(secretKey, successURL, cancelURL string) *PaymentService {
	stripe.Key = secretKey
	return &PaymentService{
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateConnectAccount provisions a Stripe Connect Express account for a
// new vendor. The returned account id must be rolled back with
// DeleteAccount if the vendor row insert fails afterwards.
func (s *PaymentService) CreateConnectAccount(email, businessName string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name: stripe.String(businessName),
		},
	}
	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("create connect account: %w", err)
	}
	return acct.ID, nil
}

// DeleteAccount removes a Connect account. Used to roll back onboarding
// when the vendor insert fails after the account was created.
func (s *PaymentService) DeleteAccount(accountID string) {
	if _, err := account.Del(accountID, nil); err != nil {
		log.Error().Err(err).Str("account_id", accountID).Msg("Failed to roll back Stripe account")
	}
}

// CreateSlotCheckout creates a checkout session for a featured-slot
// reservation. The reservation id travels in the session metadata so the
// webhook can finalize the slot, and the session expires with the
// reservation hold so an abandoned checkout frees the capacity.
func (s *PaymentService) CreateSlotCheckout(region *models.Region, reservationID string, hold time.Duration) (*stripe.CheckoutSession, error) {
	// Stripe requires expires_at to be at least 30 minutes out.
	expiresAt := time.Now().Add(hold)
	if min := time.Now().Add(30 * time.Minute); expiresAt.Before(min) {
		expiresAt = min
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyAUD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Featured placement — %s", region.Name)),
					},
					UnitAmount: stripe.Int64(region.SlotPriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		ExpiresAt:  stripe.Int64(expiresAt.Unix()),
	}
	params.AddMetadata("reservation_id", reservationID)
	params.AddMetadata("region_slug", region.Slug)

	return session.New(params)
}

// CreateProductCheckout creates a checkout session for a product
// purchase using a Connect destination charge. The platform commission
// is taken as an application fee computed from the vendor's rate.
func (s *PaymentService) CreateProductCheckout(vendor *models.Vendor, product *models.Product) (*stripe.CheckoutSession, error) {
	if vendor.StripeAccountID == "" {
		return nil, fmt.Errorf("vendor %d has no connected account", vendor.ID)
	}

	fee := vendor.CommissionRate.
		Mul(decimal.NewFromInt(product.PriceCents)).
		Round(0).
		IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyAUD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(product.Title),
					},
					UnitAmount: stripe.Int64(product.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(fee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(vendor.StripeAccountID),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	params.AddMetadata("product_id", fmt.Sprintf("%d", product.ID))
	params.AddMetadata("vendor_id", fmt.Sprintf("%d", vendor.ID))

	return session.New(params)
}
