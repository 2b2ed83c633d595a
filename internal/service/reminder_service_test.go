package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suburbmates/suburbmates-api/internal/repository"
)

func setupReminderService(t *testing.T, mailer *fakeMailer, windows []int) (sqlmock.Sqlmock, *ReminderService, func()) {
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDb, "sqlmock")

	reminderRepo := repository.NewReminderRepository(db)
	svc := NewReminderService(reminderRepo, NewNotificationService(mailer), windows)
	return mock, svc, func() { db.Close() }
}

const slotID = "5f0c9d1e-3c2a-4b6f-9b1d-2f4e5a6b7c8d"

func candidateRows(email interface{}) *sqlmock.Rows {
	endDate := time.Now().AddDate(0, 0, 7)
	return sqlmock.NewRows([]string{
		"slot_id", "vendor_id", "business_name", "region_name", "end_date", "email",
	}).AddRow(slotID, 7, "Bella's Bakery", "Inner West", endDate, email)
}

func TestDispatchReminders_SendsAndRecords(t *testing.T) {
	mailer := &fakeMailer{}
	mock, svc, cleanup := setupReminderService(t, mailer, []int{7})
	defer cleanup()

	mock.ExpectQuery(`FROM featured_slots s`).
		WillReturnRows(candidateRows("bella@example.com"))
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_slot_reminders`).
		WithArgs(slotID, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO featured_slot_reminders`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_at"}).AddRow(1, time.Now()))

	report, err := svc.DispatchReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"bella@example.com"}, mailer.sent[0].To)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchReminders_AlreadySentIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	mock, svc, cleanup := setupReminderService(t, mailer, []int{7})
	defer cleanup()

	mock.ExpectQuery(`FROM featured_slots s`).
		WillReturnRows(candidateRows("bella@example.com"))
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_slot_reminders`).
		WithArgs(slotID, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	report, err := svc.DispatchReminders(context.Background())
	require.NoError(t, err)

	// Re-running the dispatcher never double-sends.
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, mailer.sent)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchReminders_MissingEmailSkipsSlot(t *testing.T) {
	mailer := &fakeMailer{}
	mock, svc, cleanup := setupReminderService(t, mailer, []int{7})
	defer cleanup()

	mock.ExpectQuery(`FROM featured_slots s`).
		WillReturnRows(candidateRows(nil))
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_slot_reminders`).
		WithArgs(slotID, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	report, err := svc.DispatchReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, mailer.sent)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchReminders_FailedSendIsRecordedNotFatal(t *testing.T) {
	mailer := &fakeMailer{failErr: errors.New("provider down")}
	mock, svc, cleanup := setupReminderService(t, mailer, []int{7})
	defer cleanup()

	mock.ExpectQuery(`FROM featured_slots s`).
		WillReturnRows(candidateRows("bella@example.com"))
	mock.ExpectQuery(`SELECT COUNT\(1\) FROM featured_slot_reminders`).
		WithArgs(slotID, 7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// A failed record is written so the outcome is auditable, but it does
	// not block a later retry.
	mock.ExpectQuery(`INSERT INTO featured_slot_reminders`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sent_at"}).AddRow(1, time.Now()))

	report, err := svc.DispatchReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Sent)
	assert.NotEmpty(t, report.Errors)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTargetDayBounds(t *testing.T) {
	// 2026-03-10 23:30 AEST: seven days out is the whole of 2026-03-17.
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, aest)
	start, end := targetDayBounds(now, 7)

	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, aest), start)
	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, aest), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
