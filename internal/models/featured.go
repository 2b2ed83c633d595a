package models

import "time"

// SlotStatus enumerates featured slot states. A slot begins life as
// "reserved" (capacity held pending payment), becomes "active" once the
// checkout completes, and ends as "expired" or "cancelled". A slot is
// never mutated back to active.
type SlotStatus string

const (
	SlotStatusReserved  SlotStatus = "reserved"
	SlotStatusActive    SlotStatus = "active"
	SlotStatusExpired   SlotStatus = "expired"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// QueueStatus enumerates waiting-queue entry states.
type QueueStatus string

const (
	QueueStatusWaiting   QueueStatus = "waiting"
	QueueStatusPromoted  QueueStatus = "promoted"
	QueueStatusCancelled QueueStatus = "cancelled"
)

// FeaturedSlot is a paid, time-boxed promotional placement for a vendor
// within a region. Reserved and active slots both count toward the
// region's capacity cap.
type FeaturedSlot struct {
	ID              string     `db:"id" json:"id"`
	VendorID        int        `db:"vendor_id" json:"vendorId"`
	RegionID        int        `db:"region_id" json:"regionId"`
	Status          SlotStatus `db:"status" json:"status"`
	ReservedUntil   *time.Time `db:"reserved_until" json:"reservedUntil,omitempty"`
	StartDate       *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate         *time.Time `db:"end_date" json:"endDate,omitempty"`
	StripeSessionID string     `db:"stripe_session_id" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// FeaturedQueueEntry is a vendor waiting for slot capacity to free up in
// a region. joined_at is the FIFO ordering key; at most one waiting
// entry exists per (vendor, region) pair.
type FeaturedQueueEntry struct {
	ID        int         `db:"id" json:"id"`
	VendorID  int         `db:"vendor_id" json:"vendorId"`
	RegionID  int         `db:"region_id" json:"regionId"`
	Label     string      `db:"label" json:"label"`
	Status    QueueStatus `db:"status" json:"status"`
	JoinedAt  *time.Time  `db:"joined_at" json:"joinedAt"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// ReminderStatus enumerates reminder record outcomes.
type ReminderStatus string

const (
	ReminderStatusSent   ReminderStatus = "sent"
	ReminderStatusFailed ReminderStatus = "failed"
)

// FeaturedSlotReminder is an idempotency and audit record of an
// expiry-warning notification for a slot. At most one "sent" record
// exists per (slot, window) pair; a "failed" record does not block a
// later re-run.
type FeaturedSlotReminder struct {
	ID             int            `db:"id" json:"id"`
	SlotID         string         `db:"slot_id" json:"slotId"`
	ReminderWindow int            `db:"reminder_window" json:"reminderWindow"`
	Status         ReminderStatus `db:"status" json:"status"`
	Error          *string        `db:"error" json:"error,omitempty"`
	SentAt         time.Time      `db:"sent_at" json:"sentAt"`
}
