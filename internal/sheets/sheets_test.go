package sheets

import (
	"testing"
	"time"

	"darbot/internal/models"
)

func TestFilterConfirmed(t *testing.T) {
	reservations := []models.Reservation{
		{ID: 1, Status: models.StatusConfirmed},
		{ID: 2, Status: models.StatusCancelled},
		{ID: 3, Status: models.StatusConfirmed},
	}

	active := filterConfirmed(reservations)

	if len(active) != 2 {
		t.Errorf("Expected 2 confirmed reservations, got %d", len(active))
	}
	for _, r := range active {
		if r.Status == models.StatusCancelled {
			t.Errorf("Cancelled reservation found in confirmed list")
		}
	}
}

func TestReservationRowValues(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	r := &models.Reservation{
		ID:             123,
		RoomNumber:     "214",
		RoomName:       "Конференц-зал",
		FullName:       "Иванова Мария",
		Purpose:        "Репетиция хора",
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		RecurrenceKind: models.RecurrenceWeekly,
	}

	values := reservationRowValues(r)

	expected := []interface{}{
		int64(123),
		"Конференц-зал",
		"2026-09-07",
		"10:00",
		"12:00",
		"Иванова Мария",
		"Репетиция хора",
		"weekly",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestRowValuesFallBackToRoomNumber(t *testing.T) {
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	r := &models.Reservation{
		ID: 1, RoomNumber: "101",
		StartTime: start, EndTime: start.Add(time.Hour),
		RecurrenceKind: models.RecurrenceNone,
	}

	values := reservationRowValues(r)
	if values[1] != "101" {
		t.Errorf("Expected room number fallback, got %v", values[1])
	}
	if values[7] != "" {
		t.Errorf("Expected empty recurrence column, got %v", values[7])
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	s.setCachedRow(100, 5)
	row, ok := s.getCachedRow(100)
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.deleteCachedRow(100)
	if _, ok = s.getCachedRow(100); ok {
		t.Errorf("Expected row to be deleted from cache")
	}

	s.setCachedRow(200, 10)
	s.ClearCache()
	if _, ok = s.getCachedRow(200); ok {
		t.Errorf("Expected cache to be cleared")
	}
}
