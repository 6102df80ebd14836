// Package models holds the persistent domain types of the room booking bot.
package models

import "time"

// Reservation statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// RecurrenceKind describes how a reservation series repeats.
type RecurrenceKind string

const (
	RecurrenceNone     RecurrenceKind = "none"
	RecurrenceWeekly   RecurrenceKind = "weekly"
	RecurrenceBiweekly RecurrenceKind = "biweekly"
	RecurrenceMonthly  RecurrenceKind = "monthly"
)

// Valid reports whether the kind is one of the supported values.
func (k RecurrenceKind) Valid() bool {
	switch k {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Room represents a bookable room. Rooms are never physically removed:
// deactivation flips IsActive so historical reservations keep their reference.
type Room struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	Name        string    `json:"name"`
	Floor       int       `json:"floor"`
	Capacity    int       `json:"capacity"`
	Equipment   string    `json:"equipment"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName returns the human-facing room title.
func (r *Room) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return "Аудитория " + r.Number
}

// Reservation is one materialized occurrence of a booking. A recurring
// request produces one row per occurrence sharing RecurrenceGroup; there is
// no rule+exceptions model, so occurrences are deleted and conflict-skipped
// independently.
type Reservation struct {
	ID              int64          `json:"id"`
	RoomID          int64          `json:"room_id"`
	UserID          int64          `json:"user_id"`
	FullName        string         `json:"full_name"`
	Purpose         string         `json:"purpose"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
	Status          string         `json:"status"`
	RecurrenceKind  RecurrenceKind `json:"recurrence_kind"`
	RecurrenceUntil *time.Time     `json:"recurrence_until,omitempty"`
	RecurrenceGroup string         `json:"recurrence_group,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`

	// Joined fields, populated by list queries.
	RoomName   string `json:"room_name,omitempty"`
	RoomNumber string `json:"room_number,omitempty"`
}

// OverlapsInterval checks the reservation against [start, end) using
// half-open semantics: touching boundaries do not conflict.
func (r *Reservation) OverlapsInterval(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// User is a Telegram user known to the bot. ID is the Telegram user id.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
