package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservationOverlapsInterval(t *testing.T) {
	base := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	r := Reservation{StartTime: base, EndTime: base.Add(2 * time.Hour)}

	t.Run("BackToBack", func(t *testing.T) {
		assert.False(t, r.OverlapsInterval(base.Add(2*time.Hour), base.Add(3*time.Hour)))
		assert.False(t, r.OverlapsInterval(base.Add(-time.Hour), base))
	})

	t.Run("Overlapping", func(t *testing.T) {
		assert.True(t, r.OverlapsInterval(base.Add(time.Hour), base.Add(3*time.Hour)))
		assert.True(t, r.OverlapsInterval(base.Add(-time.Hour), base.Add(time.Minute)))
		assert.True(t, r.OverlapsInterval(base, base.Add(2*time.Hour)))
		assert.True(t, r.OverlapsInterval(base.Add(30*time.Minute), base.Add(time.Hour)))
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.False(t, r.OverlapsInterval(base.Add(5*time.Hour), base.Add(6*time.Hour)))
	})
}

func TestRecurrenceKindValid(t *testing.T) {
	for _, k := range []RecurrenceKind{RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly} {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, RecurrenceKind("daily").Valid())
	assert.False(t, RecurrenceKind("").Valid())
}

func TestRoomDisplayName(t *testing.T) {
	assert.Equal(t, "Конференц-зал", (&Room{Number: "214", Name: "Конференц-зал"}).DisplayName())
	assert.Equal(t, "Аудитория 101", (&Room{Number: "101"}).DisplayName())
}
