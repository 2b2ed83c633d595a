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
	"github.com/suburbmates/suburbmates-api/pkg/resend"
)

// fakeMailer records outbound emails instead of calling the provider.
type fakeMailer struct {
	sent    []*resend.Email
	failErr error
}

func (m *fakeMailer) Send(ctx context.Context, email *resend.Email) (string, error) {
	if m.failErr != nil {
		return "", m.failErr
	}
	m.sent = append(m.sent, email)
	return "msg_test", nil
}

func setupTierService(t *testing.T) (sqlmock.Sqlmock, *TierService, func()) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDb, "sqlmock")

	vendorRepo := repository.NewVendorRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifier := NewNotificationService(&fakeMailer{})

	svc := NewTierService(vendorRepo, productRepo, userRepo, notifier)
	return mock, svc, func() { db.Close() }
}

func vendorRows(id int, tier models.Tier, quota int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "business_name", "slug", "tier", "product_quota",
		"commission_rate", "can_sell_products", "vendor_status",
		"stripe_account_id", "api_key", "test_key", "created_at", "updated_at",
	}).AddRow(
		id, 10, "Bella's Bakery", "bellas-bakery", string(tier), quota,
		"0.12", true, "active",
		"acct_123", "sm_live_abc", "sm_test_abc", now, now,
	)
}

func TestEnforceProductCap_UnpublishesOldestExcess(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	// Vendor on basic (quota 3) with 5 published products: the two oldest
	// must be unpublished, newest three stay.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title FROM products`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "Sourdough starter kit").
			AddRow(2, "Lamington box").
			AddRow(3, "Pavlova base").
			AddRow(4, "Meat pie six-pack").
			AddRow(5, "Vanilla slice"))
	mock.ExpectExec(`UPDATE products SET published = false`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	result, err := svc.EnforceProductCap(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)

	assert.Equal(t, 2, result.UnpublishedCount)
	require.Len(t, result.UnpublishedProducts, 2)
	assert.Equal(t, 1, result.UnpublishedProducts[0].ID)
	assert.Equal(t, 2, result.UnpublishedProducts[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnforceProductCap_WithinQuotaIsNoop(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title FROM products`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "Sourdough starter kit").
			AddRow(2, "Lamington box"))
	mock.ExpectCommit()

	result, err := svc.EnforceProductCap(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UnpublishedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnforceProductCap_ExactlyAtQuotaIsNoop(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title FROM products`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "A").AddRow(2, "B").AddRow(3, "C"))
	mock.ExpectCommit()

	result, err := svc.EnforceProductCap(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UnpublishedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnforceProductCap_UnknownTier(t *testing.T) {
	_, svc, cleanup := setupTierService(t)
	defer cleanup()

	_, err := svc.EnforceProductCap(context.Background(), 7, models.Tier("platinum"))
	assert.ErrorIs(t, err, utils.ErrInvalidTier)
}

func publishedProductRows(ids ...int) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "vendor_id", "title", "description", "price_cents",
		"published", "deleted_at", "created_at", "updated_at",
	})
	for i, id := range ids {
		rows.AddRow(id, 7, "Product", "", 1000, true, nil,
			now.Add(time.Duration(i)*time.Minute), now)
	}
	return rows
}

func TestGetDowngradePreview_MatchesEnforcementSelection(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM products`).
		WithArgs(7).
		WillReturnRows(publishedProductRows(1, 2, 3, 4, 5))

	preview, err := svc.GetDowngradePreview(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)

	assert.True(t, preview.WillUnpublish)
	assert.Equal(t, 5, preview.PublishedCount)
	assert.Equal(t, 3, preview.NewQuota)
	require.Len(t, preview.AffectedProducts, 2)
	// Same FIFO selection as the enforcer: oldest first.
	assert.Equal(t, 1, preview.AffectedProducts[0].ID)
	assert.Equal(t, 2, preview.AffectedProducts[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDowngradePreview_NothingToUnpublish(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM products`).
		WithArgs(7).
		WillReturnRows(publishedProductRows(1, 2))

	preview, err := svc.GetDowngradePreview(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)

	assert.False(t, preview.WillUnpublish)
	assert.Empty(t, preview.AffectedProducts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeTier_UnknownTierRejected(t *testing.T) {
	_, svc, cleanup := setupTierService(t)
	defer cleanup()

	_, err := svc.ChangeTier(context.Background(), 7, models.Tier("gold"))
	assert.ErrorIs(t, err, utils.ErrInvalidTier)
}

func TestChangeTier_SameTierIsNoop(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors`).
		WithArgs(7).
		WillReturnRows(vendorRows(7, models.TierBasic, 3))

	result, err := svc.ChangeTier(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)

	assert.False(t, result.Changed)
	assert.Nil(t, result.Enforcement)

	// No tier update, no enforcement.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeTier_UpgradeSkipsEnforcement(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors`).
		WithArgs(7).
		WillReturnRows(vendorRows(7, models.TierBasic, 3))
	mock.ExpectExec(`UPDATE vendors`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.ChangeTier(context.Background(), 7, models.TierPro)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.False(t, result.WasDowngrade)
	assert.Nil(t, result.Enforcement)
	assert.Equal(t, models.TierPro, result.Vendor.Tier)
	assert.Equal(t, 10, result.Vendor.ProductQuota)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeTier_DowngradeWithinQuota(t *testing.T) {
	mock, svc, cleanup := setupTierService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM vendors`).
		WithArgs(7).
		WillReturnRows(vendorRows(7, models.TierPro, 10))
	mock.ExpectExec(`UPDATE vendors`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Enforcement runs but finds nothing over the new quota.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title FROM products`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(1, "A").AddRow(2, "B"))
	mock.ExpectCommit()

	result, err := svc.ChangeTier(context.Background(), 7, models.TierBasic)
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.True(t, result.WasDowngrade)
	require.NotNil(t, result.Enforcement)
	assert.Equal(t, 0, result.Enforcement.UnpublishedCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
