package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func findCell(t *testing.T, grid MonthGrid, day int) Cell {
	t.Helper()
	for _, week := range grid.Weeks {
		for _, cell := range week {
			if cell.Day == day {
				return cell
			}
		}
	}
	t.Fatalf("day %d not found in grid", day)
	return Cell{}
}

func TestBuildMonthGridLayout(t *testing.T) {
	// September 2026 starts on a Tuesday and has 30 days.
	today := date("2026-09-10")
	grid := BuildMonthGrid(2026, time.September, today, today, time.Time{}, "")

	assert.Equal(t, "Сентябрь 2026", grid.Title())
	require.Len(t, grid.Weeks, 5)

	// Monday-first: the 1st sits in the second column.
	assert.Equal(t, CellEmpty, grid.Weeks[0][0].Kind)
	assert.Equal(t, 1, grid.Weeks[0][1].Day)

	// Last week padded to 7 cells.
	assert.Len(t, grid.Weeks[4], 7)
	assert.Equal(t, 30, grid.Weeks[4][2].Day)
	assert.Equal(t, CellEmpty, grid.Weeks[4][6].Kind)
}

func TestBuildMonthGridKinds(t *testing.T) {
	today := date("2026-09-10")
	grid := BuildMonthGrid(2026, time.September, today, today, time.Time{}, "2026-09-20")

	assert.Equal(t, CellPast, findCell(t, grid, 9).Kind)
	assert.Equal(t, CellToday, findCell(t, grid, 10).Kind)
	assert.Equal(t, CellNormal, findCell(t, grid, 11).Kind)
	assert.Equal(t, CellSelected, findCell(t, grid, 20).Kind)
}

func TestBuildMonthGridMinDateDisables(t *testing.T) {
	// Recurrence end selection: days before the base date are disabled
	// but not past.
	today := date("2026-09-01")
	grid := BuildMonthGrid(2026, time.September, today, date("2026-09-07"), time.Time{}, "")

	assert.Equal(t, CellToday, findCell(t, grid, 1).Kind)
	assert.Equal(t, CellDisabled, findCell(t, grid, 5).Kind)
	assert.Equal(t, CellNormal, findCell(t, grid, 7).Kind)
}

func TestBuildMonthGridCanPrev(t *testing.T) {
	today := date("2026-09-10")

	current := BuildMonthGrid(2026, time.September, today, today, time.Time{}, "")
	assert.False(t, current.CanPrev)

	next := BuildMonthGrid(2026, time.October, today, today, time.Time{}, "")
	assert.True(t, next.CanPrev)
}

func TestBuildMonthGridMaxDateDisables(t *testing.T) {
	today := date("2026-09-10")
	grid := BuildMonthGrid(2026, time.September, today, today, date("2026-09-20"), "")

	assert.Equal(t, CellNormal, findCell(t, grid, 20).Kind)
	assert.Equal(t, CellDisabled, findCell(t, grid, 21).Kind)
	assert.False(t, grid.CanNext)

	// Without an upper bound every future day stays selectable.
	open := BuildMonthGrid(2026, time.September, today, today, time.Time{}, "")
	assert.Equal(t, CellNormal, findCell(t, open, 21).Kind)
	assert.True(t, open.CanNext)
}

func TestCalendarKeyboardMutesNextOnLastMonth(t *testing.T) {
	today := date("2026-09-10")
	grid := BuildMonthGrid(2026, time.September, today, today, date("2026-09-20"), "")
	kb := CalendarKeyboard(grid)

	header := kb.InlineKeyboard[0]
	require.Len(t, header, 3)
	assert.Equal(t, "cal:ignore", *header[2].CallbackData, "no next past the last bookable month")
}

func TestParseSelection(t *testing.T) {
	got, ok := ParseSelection("cal:select:2026-09-07")
	require.True(t, ok)
	assert.Equal(t, date("2026-09-07"), got)

	_, ok = ParseSelection("cal:select:garbage")
	assert.False(t, ok)
	_, ok = ParseSelection("room:7")
	assert.False(t, ok)
}

func TestCalendarKeyboard(t *testing.T) {
	today := date("2026-09-10")
	grid := BuildMonthGrid(2026, time.September, today, today, time.Time{}, "")
	kb := CalendarKeyboard(grid)

	// Header, weekday row, 5 weeks, manual entry, cancel.
	require.Len(t, kb.InlineKeyboard, 9)

	header := kb.InlineKeyboard[0]
	require.Len(t, header, 3)
	assert.Equal(t, "cal:ignore", *header[0].CallbackData, "no prev on current month")
	assert.Equal(t, "cal:next", *header[2].CallbackData)

	// A past day answers with cal:ignore, a future day with its date.
	var pastData, futureData string
	for _, row := range kb.InlineKeyboard[2:7] {
		for _, btn := range row {
			if btn.Text == "·" && pastData == "" {
				pastData = *btn.CallbackData
			}
			if btn.Text == "15" {
				futureData = *btn.CallbackData
			}
		}
	}
	assert.Equal(t, "cal:ignore", pastData)
	assert.Equal(t, "cal:select:2026-09-15", futureData)
}
