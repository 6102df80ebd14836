package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"darbot/internal/models"
)

type stubReservations struct {
	list []models.Reservation
	err  error
}

func (s *stubReservations) ListConfirmedReservations(_ context.Context, _ int64) ([]models.Reservation, error) {
	return s.list, s.err
}

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCheckerHalfOpenIntervals(t *testing.T) {
	existing := []models.Reservation{
		{RoomID: 1, StartTime: at("2026-09-07", "10:00"), EndTime: at("2026-09-07", "12:00"), Status: models.StatusConfirmed},
	}
	checker := NewChecker(&stubReservations{list: existing})

	tests := []struct {
		name  string
		start string
		end   string
		free  bool
	}{
		{"back to back after", "12:00", "13:00", true},
		{"back to back before", "09:00", "10:00", true},
		{"overlap tail", "11:00", "12:30", false},
		{"overlap head", "09:30", "10:30", false},
		{"contained", "10:30", "11:00", false},
		{"containing", "09:00", "13:00", false},
		{"identical", "10:00", "12:00", false},
		{"disjoint", "14:00", "15:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			free, err := checker.IsAvailable(context.Background(), 1, at("2026-09-07", tt.start), at("2026-09-07", tt.end))
			assert.NoError(t, err)
			assert.Equal(t, tt.free, free)
		})
	}
}

func TestCheckerRejectsEmptyInterval(t *testing.T) {
	checker := NewChecker(&stubReservations{})

	_, err := checker.IsAvailable(context.Background(), 1, at("2026-09-07", "10:00"), at("2026-09-07", "10:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = checker.IsAvailable(context.Background(), 1, at("2026-09-07", "12:00"), at("2026-09-07", "10:00"))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCheckerPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	checker := NewChecker(&stubReservations{err: boom})

	free, err := checker.IsAvailable(context.Background(), 1, at("2026-09-07", "10:00"), at("2026-09-07", "11:00"))
	assert.False(t, free)
	assert.ErrorIs(t, err, boom)
}

func TestOverlaps(t *testing.T) {
	assert.False(t, Overlaps(
		at("2026-09-07", "10:00"), at("2026-09-07", "12:00"),
		at("2026-09-07", "12:00"), at("2026-09-07", "13:00"),
	))
	assert.True(t, Overlaps(
		at("2026-09-07", "10:00"), at("2026-09-07", "12:00"),
		at("2026-09-07", "11:59"), at("2026-09-07", "13:00"),
	))
}
