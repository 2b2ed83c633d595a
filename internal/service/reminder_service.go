package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/internal/repository"
)

// aest is the business timezone used for reminder day boundaries.
var aest = time.FixedZone("AEST", 10*3600)

// ReminderRunReport aggregates the outcome of one dispatch run.
type ReminderRunReport struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// ReminderService sends expiry-warning emails for featured slots at
// fixed day-offsets before their end date, with a reminder record per
// (slot, window) pair as the idempotency guard.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	notifier     *NotificationService
	windows      []int
}

// NewReminderService constructs a ReminderService. Windows are
// days-before-expiry offsets, e.g. {7, 2}.
func NewReminderService(reminderRepo *repository.ReminderRepository, notifier *NotificationService, windows []int) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		notifier:     notifier,
		windows:      windows,
	}
}

// DispatchReminders runs one pass over every configured window. For each
// active slot expiring on the window's target day it sends at most one
// warning: a slot with an existing sent record is skipped, so rerunning
// the dispatcher never double-sends. A failed send is recorded but does
// not block a later run from retrying. A missing vendor email skips the
// slot with a warning and never fails the batch.
func (s *ReminderService) DispatchReminders(ctx context.Context) (*ReminderRunReport, error) {
	report := &ReminderRunReport{}

	for _, window := range s.windows {
		if err := s.dispatchWindow(ctx, window, report); err != nil {
			return report, err
		}
	}

	if report.Processed > 0 {
		log.Info().
			Int("processed", report.Processed).
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Int("skipped", report.Skipped).
			Msg("Reminder dispatch complete")
	}
	return report, nil
}

func (s *ReminderService) dispatchWindow(ctx context.Context, window int, report *ReminderRunReport) error {
	dayStart, dayEnd := targetDayBounds(time.Now(), window)

	candidates, err := s.reminderRepo.GetCandidates(dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("load reminder candidates (window %d): %w", window, err)
	}

	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		report.Processed++

		sent, err := s.reminderRepo.HasSent(c.SlotID, window)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("slot %s: %v", c.SlotID, err))
			continue
		}
		if sent {
			report.Skipped++
			continue
		}

		if c.Email == nil || *c.Email == "" {
			log.Warn().Str("slot_id", c.SlotID).Int("vendor_id", c.VendorID).
				Msg("No notification email for expiring slot, skipping")
			report.Skipped++
			continue
		}

		sendErr := s.notifier.SendExpiryReminder(ctx, *c.Email, c.BusinessName, c.RegionName, c.EndDate, window)

		reminder := &models.FeaturedSlotReminder{
			SlotID:         c.SlotID,
			ReminderWindow: window,
			Status:         models.ReminderStatusSent,
		}
		if sendErr != nil {
			msg := sendErr.Error()
			reminder.Status = models.ReminderStatusFailed
			reminder.Error = &msg
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("slot %s: %v", c.SlotID, sendErr))
			log.Error().Err(sendErr).Str("slot_id", c.SlotID).Msg("Failed to send expiry reminder")
		} else {
			report.Sent++
		}

		if err := s.reminderRepo.Create(reminder); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("slot %s: record reminder: %v", c.SlotID, err))
			log.Error().Err(err).Str("slot_id", c.SlotID).Msg("Failed to record reminder")
		}
	}
	return nil
}

// targetDayBounds returns the [start, end) bounds of the calendar day
// `window` days from now, in the business timezone.
func targetDayBounds(now time.Time, window int) (time.Time, time.Time) {
	local := now.In(aest).AddDate(0, 0, window)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, aest)
	return start, start.AddDate(0, 0, 1)
}
