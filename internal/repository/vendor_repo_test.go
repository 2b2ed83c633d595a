package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVendorRepo(t *testing.T) (sqlmock.Sqlmock, *VendorRepository, func()) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDb, "sqlmock")
	return mock, NewVendorRepository(db), func() { db.Close() }
}

func vendorRow(apiKey, testKey string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "business_name", "slug", "tier", "product_quota",
		"commission_rate", "can_sell_products", "vendor_status",
		"stripe_account_id", "api_key", "test_key", "created_at", "updated_at",
	}).AddRow(
		7, 10, "Bella's Bakery", "bellas-bakery", "basic", 3,
		"0.12", true, "active",
		"acct_123", apiKey, testKey, now, now,
	)
}

func TestGetByAPIKey_LiveKey(t *testing.T) {
	mock, repo, cleanup := setupVendorRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors WHERE api_key`).
		WithArgs("sm_live_abc").
		WillReturnRows(vendorRow("sm_live_abc", "sm_test_abc"))

	vendor, isTest, err := repo.GetByAPIKey("sm_live_abc")
	require.NoError(t, err)

	assert.Equal(t, 7, vendor.ID)
	assert.False(t, isTest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByAPIKey_TestKey(t *testing.T) {
	mock, repo, cleanup := setupVendorRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors WHERE api_key`).
		WithArgs("sm_test_abc").
		WillReturnRows(vendorRow("sm_live_abc", "sm_test_abc"))

	vendor, isTest, err := repo.GetByAPIKey("sm_test_abc")
	require.NoError(t, err)

	assert.Equal(t, 7, vendor.ID)
	assert.True(t, isTest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByAPIKey_Unknown(t *testing.T) {
	mock, repo, cleanup := setupVendorRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors WHERE api_key`).
		WithArgs("sm_live_nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.GetByAPIKey("sm_live_nope")
	assert.Error(t, err)
}
