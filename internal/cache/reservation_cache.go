package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ReservationData represents a cached featured-slot reservation pending
// payment. It correlates a Stripe checkout session back to the slot it
// will activate, so the webhook path can finalize without a table scan.
type ReservationData struct {
	ReservationID     string    `json:"reservationId"`
	VendorID          int       `json:"vendorId"`
	RegionID          int       `json:"regionId"`
	RegionSlug        string    `json:"regionSlug"`
	CheckoutSessionID string    `json:"checkoutSessionId,omitempty"`
	AmountCents       int64     `json:"amountCents"`
	ExpiresAt         time.Time `json:"expiresAt"`
	CachedAt          time.Time `json:"cachedAt"`
}

// ReservationCache provides reservation caching operations.
type ReservationCache struct {
	redis *RedisClient
}

// NewReservationCache creates a new ReservationCache.
func NewReservationCache(redis *RedisClient) *ReservationCache {
	return &ReservationCache{
		redis: redis,
	}
}

// keyByReservationID returns the primary Redis key for a reservation.
func (c *ReservationCache) keyByReservationID(reservationID string) string {
	return fmt.Sprintf("featured:reservation:%s", reservationID)
}

// keyBySessionID returns the secondary Redis key mapping a checkout
// session back to its reservation.
func (c *ReservationCache) keyBySessionID(sessionID string) string {
	return fmt.Sprintf("featured:session:%s", sessionID)
}

// Set stores reservation data with double caching strategy.
// Primary key: featured:reservation:{reservationId}
// Secondary key: featured:session:{checkoutSessionId} -> reservationId
// TTL: until the reservation hold expires.
func (c *ReservationCache) Set(ctx context.Context, data *ReservationData) error {
	data.CachedAt = time.Now()

	ttl := time.Until(data.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation data: %w", err)
	}

	primaryKey := c.keyByReservationID(data.ReservationID)
	if err := c.redis.Set(ctx, primaryKey, string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to set primary key: %w", err)
	}

	if data.CheckoutSessionID != "" {
		sessionKey := c.keyBySessionID(data.CheckoutSessionID)
		if err := c.redis.Set(ctx, sessionKey, data.ReservationID, ttl); err != nil {
			return fmt.Errorf("failed to set session key: %w", err)
		}
	}

	return nil
}

// GetByReservationID retrieves reservation data by reservation ID.
func (c *ReservationCache) GetByReservationID(ctx context.Context, reservationID string) (*ReservationData, error) {
	key := c.keyByReservationID(reservationID)
	jsonData, err := c.redis.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var data ReservationData
	if err := json.Unmarshal([]byte(jsonData), &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation data: %w", err)
	}

	return &data, nil
}

// GetBySessionID retrieves reservation data by Stripe checkout session ID.
func (c *ReservationCache) GetBySessionID(ctx context.Context, sessionID string) (*ReservationData, error) {
	reservationID, err := c.redis.Get(ctx, c.keyBySessionID(sessionID))
	if err != nil {
		return nil, err
	}
	return c.GetByReservationID(ctx, reservationID)
}

// Delete removes reservation data (both primary and session keys).
func (c *ReservationCache) Delete(ctx context.Context, data *ReservationData) error {
	keys := []string{c.keyByReservationID(data.ReservationID)}
	if data.CheckoutSessionID != "" {
		keys = append(keys, c.keyBySessionID(data.CheckoutSessionID))
	}
	return c.redis.Delete(ctx, keys...)
}
