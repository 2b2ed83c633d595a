package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/suburbmates/suburbmates-api/internal/models"
	"github.com/suburbmates/suburbmates-api/pkg/resend"
)

// Mailer is the outbound email surface used by notification dispatch.
// Satisfied by *resend.Client; tests substitute a fake.
type Mailer interface {
	Send(ctx context.Context, email *resend.Email) (string, error)
}

// NotificationService composes and sends vendor-facing emails.
// Send failures are the caller's to handle; delivery is best-effort.
type NotificationService struct {
	mailer Mailer
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(mailer Mailer) *NotificationService {
	return &NotificationService{mailer: mailer}
}

// SendDowngradeNotice tells a vendor which products were unpublished by
// a tier downgrade.
func (s *NotificationService) SendDowngradeNotice(ctx context.Context, email, businessName string, newTier models.Tier, products []models.ProductRef) error {
	titles := make([]string, len(products))
	for i, p := range products {
		titles[i] = "- " + p.Title
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour plan changed to %s, which allows fewer published products. "+
			"The following products were unpublished (oldest first):\n\n%s\n\n"+
			"You can re-publish them after removing others or upgrading your plan.\n\nSuburbMates",
		businessName, newTier, strings.Join(titles, "\n"),
	)

	_, err := s.mailer.Send(ctx, &resend.Email{
		To:      []string{email},
		Subject: fmt.Sprintf("Products unpublished after plan change (%d affected)", len(products)),
		Text:    body,
	})
	return err
}

// SendExpiryReminder warns a vendor that a featured placement is about
// to expire.
func (s *NotificationService) SendExpiryReminder(ctx context.Context, email, businessName, regionName string, endDate time.Time, daysLeft int) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour featured placement in %s expires on %s (%d days from now). "+
			"Renew before then to keep your spot.\n\nSuburbMates",
		businessName, regionName, endDate.Format("2 January 2006"), daysLeft,
	)

	_, err := s.mailer.Send(ctx, &resend.Email{
		To:      []string{email},
		Subject: fmt.Sprintf("Your featured placement in %s expires in %d days", regionName, daysLeft),
		Text:    body,
	})
	return err
}

// SendSlotAvailableNotice tells a queued vendor that capacity has freed
// up in the region they were waiting for.
func (s *NotificationService) SendSlotAvailableNotice(ctx context.Context, email, businessName, regionName string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nA featured placement in %s is now available. "+
			"You were next in the queue — reserve it before someone else does.\n\nSuburbMates",
		businessName, regionName,
	)

	_, err := s.mailer.Send(ctx, &resend.Email{
		To:      []string{email},
		Subject: fmt.Sprintf("A featured spot opened up in %s", regionName),
		Text:    body,
	})
	return err
}
