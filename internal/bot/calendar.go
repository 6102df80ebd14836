package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CellKind classifies one day cell of the month grid.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellPast
	CellDisabled
	CellToday
	CellSelected
	CellNormal
)

// Cell is one day of the grid. Date is YYYY-MM-DD, empty for padding cells.
type Cell struct {
	Day  int
	Date string
	Kind CellKind
}

// MonthGrid is a Monday-first month layout ready for rendering.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks [][]Cell
	// CanPrev is false on the month containing today, CanNext on the month
	// containing the last selectable day, so the user cannot page outside
	// the bookable window.
	CanPrev bool
	CanNext bool
}

var ruMonths = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// Title returns the Russian month header, e.g. "Сентябрь 2026".
func (g *MonthGrid) Title() string {
	return fmt.Sprintf("%s %d", ruMonths[g.Month-1], g.Year)
}

// BuildMonthGrid lays out a month. Days before today render as past, days
// outside [minDate, maxDate] (but not past) as disabled, and the selected
// date, when it falls in this month, is marked. A zero maxDate means no
// upper bound.
func BuildMonthGrid(year int, month time.Month, today, minDate, maxDate time.Time, selected string) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	todayDate := truncateDay(today)
	minDay := truncateDay(minDate)
	if minDay.Before(todayDate) {
		minDay = todayDate
	}
	maxDay := truncateDay(maxDate)

	// Monday-first column of the 1st.
	offset := int(first.Weekday())
	if offset == 0 {
		offset = 7
	}
	offset--

	grid := MonthGrid{
		Year:    year,
		Month:   month,
		CanPrev: first.After(time.Date(todayDate.Year(), todayDate.Month(), 1, 0, 0, 0, 0, time.Local)),
		CanNext: maxDate.IsZero() || first.AddDate(0, 1, 0).Before(maxDay.AddDate(0, 0, 1)),
	}

	week := make([]Cell, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, Cell{Kind: CellEmpty})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
		iso := date.Format("2006-01-02")

		kind := CellNormal
		switch {
		case iso == selected:
			kind = CellSelected
		case date.Before(todayDate):
			kind = CellPast
		case date.Before(minDay):
			kind = CellDisabled
		case !maxDate.IsZero() && date.After(maxDay):
			kind = CellDisabled
		case date.Equal(todayDate):
			kind = CellToday
		}

		week = append(week, Cell{Day: day, Date: iso, Kind: kind})
		if len(week) == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = make([]Cell, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Cell{Kind: CellEmpty})
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

// ParseSelection extracts the date from a calendar selection callback.
func ParseSelection(data string) (time.Time, bool) {
	const prefix = "cal:select:"
	if !strings.HasPrefix(data, prefix) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimPrefix(data, prefix), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CalendarKeyboard renders the grid as an inline keyboard. Past and disabled
// days are shown muted and answer with cal:ignore.
func CalendarKeyboard(grid MonthGrid) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(grid.Weeks)+4)

	prev := tgbotapi.NewInlineKeyboardButtonData(" ", "cal:ignore")
	if grid.CanPrev {
		prev = tgbotapi.NewInlineKeyboardButtonData("‹", "cal:prev")
	}
	next := tgbotapi.NewInlineKeyboardButtonData(" ", "cal:ignore")
	if grid.CanNext {
		next = tgbotapi.NewInlineKeyboardButtonData("›", "cal:next")
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		prev,
		tgbotapi.NewInlineKeyboardButtonData(grid.Title(), "cal:ignore"),
		next,
	})

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Пн", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Вт", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Ср", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Чт", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Пт", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Сб", "cal:ignore"),
		tgbotapi.NewInlineKeyboardButtonData("Вс", "cal:ignore"),
	})

	for _, week := range grid.Weeks {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for _, cell := range week {
			row = append(row, cellButton(cell))
		}
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✍️ Ввести дату вручную", "cal:manual"),
	})
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel"),
	})

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func cellButton(cell Cell) tgbotapi.InlineKeyboardButton {
	switch cell.Kind {
	case CellEmpty:
		return tgbotapi.NewInlineKeyboardButtonData(" ", "cal:ignore")
	case CellPast, CellDisabled:
		return tgbotapi.NewInlineKeyboardButtonData("·", "cal:ignore")
	case CellToday:
		return tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("•%d", cell.Day), "cal:select:"+cell.Date)
	case CellSelected:
		return tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✓%d", cell.Day), "cal:select:"+cell.Date)
	default:
		return tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d", cell.Day), "cal:select:"+cell.Date)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
