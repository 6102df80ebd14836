package booking

import (
	"time"

	"darbot/internal/models"
)

// Occurrence is one concrete time slot produced by expanding a recurrence.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// maxMonthlyDay keeps monthly recurrences on a day every month has. A slot
// booked on the 29th, 30th or 31st repeats on the 28th instead of sliding
// into the next month.
const maxMonthlyDay = 28

// Expand turns a base slot and a recurrence rule into the full list of
// occurrences, base slot first. For models.RecurrenceNone the until date is
// ignored and the base slot is the only occurrence. All occurrences keep the
// base slot's duration and wall-clock start time.
func Expand(start, end time.Time, kind models.RecurrenceKind, until time.Time) ([]Occurrence, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}
	if kind == models.RecurrenceNone || kind == "" {
		return []Occurrence{{Start: start, End: end}}, nil
	}
	if !kind.Valid() {
		return nil, ErrUnknownRecurrence
	}

	duration := end.Sub(start)
	lastDay := dateOnly(until)
	if lastDay.Before(dateOnly(start)) {
		return nil, ErrInvalidRecurrenceRange
	}

	occurrences := []Occurrence{{Start: start, End: end}}
	switch kind {
	case models.RecurrenceWeekly, models.RecurrenceBiweekly:
		step := 7
		if kind == models.RecurrenceBiweekly {
			step = 14
		}
		for next := start.AddDate(0, 0, step); !dateOnly(next).After(lastDay); next = next.AddDate(0, 0, step) {
			occurrences = append(occurrences, Occurrence{Start: next, End: next.Add(duration)})
		}
	case models.RecurrenceMonthly:
		day := start.Day()
		if day > maxMonthlyDay {
			day = maxMonthlyDay
		}
		for i := 1; ; i++ {
			next := time.Date(start.Year(), start.Month()+time.Month(i), day,
				start.Hour(), start.Minute(), start.Second(), 0, start.Location())
			if dateOnly(next).After(lastDay) {
				break
			}
			occurrences = append(occurrences, Occurrence{Start: next, End: next.Add(duration)})
		}
	}
	return occurrences, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
