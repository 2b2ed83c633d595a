package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
	"github.com/suburbmates/suburbmates-api/internal/utils"
)

func setupFeaturedService(t *testing.T) (sqlmock.Sqlmock, *FeaturedService, func()) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDb, "sqlmock")

	regionRepo := repository.NewRegionRepository(db)
	slotRepo := repository.NewFeaturedSlotRepository(db)
	queueRepo := repository.NewFeaturedQueueRepository(db)

	svc := NewFeaturedService(regionRepo, slotRepo, queueRepo, nil, nil,
		30*time.Minute, 720*time.Hour)
	return mock, svc, func() { db.Close() }
}

func regionRow(id int, slug string, capacity int, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "slot_capacity", "slot_price_cents",
		"is_active", "created_at", "updated_at",
	}).AddRow(id, "Inner West", slug, capacity, 4900, active, now, now)
}

func queueEntryRow(id, vendorID, regionID int, joinedAt time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "vendor_id", "region_id", "label", "status",
		"joined_at", "created_at", "updated_at",
	}).AddRow(id, vendorID, regionID, "Bella's Bakery", "waiting", joinedAt, now, now)
}

func TestReserveSlot_AtCapacityQueuesVendor(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	vendor := &models.Vendor{ID: 7, BusinessName: "Bella's Bakery"}
	joined := time.Now()

	mock.ExpectQuery(`SELECT \* FROM regions WHERE slug`).
		WithArgs("inner-west").
		WillReturnRows(regionRow(3, "inner-west", 5, true))

	// Atomic reserve returns NULL: region full.
	mock.ExpectQuery(`SELECT reserve_featured_slot`).
		WithArgs(7, 3, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"reserve_featured_slot"}).AddRow(nil))

	// No existing waiting entry, insert a new one.
	mock.ExpectQuery(`SELECT \* FROM featured_queue`).
		WithArgs(7, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO featured_queue`).
		WithArgs(7, 3, "Bella's Bakery").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "joined_at", "created_at", "updated_at"}).
			AddRow(42, "waiting", joined, joined, joined))

	// Three vendors joined earlier.
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_queue`).
		WithArgs(3, joined, 42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	outcome, err := svc.ReserveSlot(context.Background(), vendor, "inner-west")
	require.NoError(t, err)

	assert.Equal(t, ReservationStatusQueued, outcome.Status)
	assert.Equal(t, 4, outcome.QueuePosition)
	assert.Equal(t, 42, outcome.QueueEntryID)
	assert.Empty(t, outcome.CheckoutURL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlot_UnknownRegion(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM regions WHERE slug`).
		WithArgs("atlantis").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.ReserveSlot(context.Background(), &models.Vendor{ID: 7}, "atlantis")
	assert.ErrorIs(t, err, utils.ErrRegionNotFound)
}

func TestReserveSlot_InactiveRegion(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM regions WHERE slug`).
		WithArgs("inner-west").
		WillReturnRows(regionRow(3, "inner-west", 5, false))

	_, err := svc.ReserveSlot(context.Background(), &models.Vendor{ID: 7}, "inner-west")
	assert.ErrorIs(t, err, utils.ErrRegionInactive)
}

func TestUpsertQueueEntry_ReusesExistingWaitingEntry(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	joined := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT \* FROM featured_queue`).
		WithArgs(7, 3).
		WillReturnRows(queueEntryRow(42, 7, 3, joined))

	entry, err := svc.UpsertQueueEntry(7, 3, "Bella's Bakery")
	require.NoError(t, err)

	// No INSERT expected: re-requesting reuses the waiting entry.
	assert.Equal(t, 42, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueuePosition_FirstWhenNoEarlierEntries(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	joined := time.Now()
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_queue`).
		WithArgs(3, joined, 42).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	position, err := svc.QueuePosition(3, &models.FeaturedQueueEntry{ID: 42, JoinedAt: &joined})
	require.NoError(t, err)
	assert.Equal(t, 1, position)
}

func TestQueuePosition_NilJoinedAtDefaultsToFirst(t *testing.T) {
	_, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	position, err := svc.QueuePosition(3, &models.FeaturedQueueEntry{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, 1, position)
}

func TestFinalizeReservation_IdempotentOnRedelivery(t *testing.T) {
	mock, svc, cleanup := setupFeaturedService(t)
	defer cleanup()

	// Slot already active: zero rows affected, treated as success.
	mock.ExpectExec(`UPDATE featured_slots`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.FinalizeReservation(context.Background(), "5f0c9d1e-3c2a-4b6f-9b1d-2f4e5a6b7c8d")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
