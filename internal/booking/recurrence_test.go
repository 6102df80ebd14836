package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darbot/internal/models"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandNone(t *testing.T) {
	start := at("2026-09-07", "10:00")
	end := at("2026-09-07", "11:00")

	// The until date is ignored for a one-off slot, even when it is absurd.
	occ, err := Expand(start, end, models.RecurrenceNone, day("2020-01-01"))
	require.NoError(t, err)
	require.Len(t, occ, 1)
	assert.Equal(t, start, occ[0].Start)
	assert.Equal(t, end, occ[0].End)
}

func TestExpandWeekly(t *testing.T) {
	occ, err := Expand(at("2026-09-07", "10:00"), at("2026-09-07", "11:00"),
		models.RecurrenceWeekly, day("2026-09-28"))
	require.NoError(t, err)
	require.Len(t, occ, 4)

	want := []string{"2026-09-07", "2026-09-14", "2026-09-21", "2026-09-28"}
	for i, w := range want {
		assert.Equal(t, at(w, "10:00"), occ[i].Start)
		assert.Equal(t, at(w, "11:00"), occ[i].End)
	}
}

func TestExpandBiweekly(t *testing.T) {
	occ, err := Expand(at("2026-09-07", "10:00"), at("2026-09-07", "11:00"),
		models.RecurrenceBiweekly, day("2026-10-05"))
	require.NoError(t, err)
	require.Len(t, occ, 3)
	assert.Equal(t, at("2026-09-21", "10:00"), occ[1].Start)
	assert.Equal(t, at("2026-10-05", "10:00"), occ[2].Start)
}

func TestExpandMonthly(t *testing.T) {
	occ, err := Expand(at("2026-09-15", "10:00"), at("2026-09-15", "11:00"),
		models.RecurrenceMonthly, day("2026-12-15"))
	require.NoError(t, err)
	require.Len(t, occ, 4)
	assert.Equal(t, at("2026-10-15", "10:00"), occ[1].Start)
	assert.Equal(t, at("2026-11-15", "10:00"), occ[2].Start)
	assert.Equal(t, at("2026-12-15", "10:00"), occ[3].Start)
}

func TestExpandMonthlyClampsLateDays(t *testing.T) {
	// Booked on the 31st: the base slot keeps its day, repeats land on the
	// 28th so February and 30-day months are never skipped.
	occ, err := Expand(at("2026-01-31", "10:00"), at("2026-01-31", "11:00"),
		models.RecurrenceMonthly, day("2026-04-30"))
	require.NoError(t, err)
	require.Len(t, occ, 4)
	assert.Equal(t, at("2026-01-31", "10:00"), occ[0].Start)
	assert.Equal(t, at("2026-02-28", "10:00"), occ[1].Start)
	assert.Equal(t, at("2026-03-28", "10:00"), occ[2].Start)
	assert.Equal(t, at("2026-04-28", "10:00"), occ[3].Start)
}

func TestExpandUntilEqualsBase(t *testing.T) {
	occ, err := Expand(at("2026-09-07", "10:00"), at("2026-09-07", "11:00"),
		models.RecurrenceWeekly, day("2026-09-07"))
	require.NoError(t, err)
	assert.Len(t, occ, 1)
}

func TestExpandErrors(t *testing.T) {
	start := at("2026-09-07", "10:00")
	end := at("2026-09-07", "11:00")

	_, err := Expand(end, start, models.RecurrenceWeekly, day("2026-10-01"))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = Expand(start, end, models.RecurrenceWeekly, day("2026-09-06"))
	assert.ErrorIs(t, err, ErrInvalidRecurrenceRange)

	_, err = Expand(start, end, models.RecurrenceKind("daily"), day("2026-10-01"))
	assert.ErrorIs(t, err, ErrUnknownRecurrence)
}

func TestExpandMonotonic(t *testing.T) {
	occ, err := Expand(at("2026-01-29", "09:00"), at("2026-01-29", "10:30"),
		models.RecurrenceMonthly, day("2026-12-31"))
	require.NoError(t, err)
	for i := 1; i < len(occ); i++ {
		assert.True(t, occ[i].Start.After(occ[i-1].Start))
		assert.Equal(t, 90*time.Minute, occ[i].End.Sub(occ[i].Start))
	}
}
