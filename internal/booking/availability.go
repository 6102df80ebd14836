package booking

import (
	"context"
	"fmt"
	"time"

	"darbot/internal/models"
)

// ReservationSource lists the confirmed reservations of a single room.
// Cancelled reservations never participate in conflict checks.
type ReservationSource interface {
	ListConfirmedReservations(ctx context.Context, roomID int64) ([]models.Reservation, error)
}

// Checker answers whether a room is free on a half-open interval
// [start, end). A reservation ending exactly when another starts does not
// conflict with it.
type Checker struct {
	src ReservationSource
}

func NewChecker(src ReservationSource) *Checker {
	return &Checker{src: src}
}

// IsAvailable reports whether roomID has no confirmed reservation overlapping
// [start, end). The interval must be non-empty.
func (c *Checker) IsAvailable(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, ErrInvalidInterval
	}
	existing, err := c.src.ListConfirmedReservations(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("list reservations for room %d: %w", roomID, err)
	}
	for _, r := range existing {
		if r.OverlapsInterval(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
