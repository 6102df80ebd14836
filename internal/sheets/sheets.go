// Package sheets mirrors confirmed reservations into a Google spreadsheet
// so administrators can see the schedule without the bot.
package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"darbot/internal/config"
	"darbot/internal/models"
)

var headerRow = []interface{}{
	"№", "Аудитория", "Дата", "Начало", "Окончание", "ФИО", "Цель", "Повтор",
}

// ReservationLister supplies the reservations to mirror.
type ReservationLister interface {
	ListReservationsBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
}

// SheetsService pushes the reservation schedule into one sheet of a
// spreadsheet. The whole range is rewritten on every sync; the row cache
// only serves point updates between syncs.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	store         ReservationLister
	logger        *zerolog.Logger

	rowCache map[int64]int
	cacheMu  sync.Mutex
}

// New builds the service from a service account credentials file.
func New(ctx context.Context, cfg config.SheetsConfig, store ReservationLister, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	name := cfg.SheetName
	if name == "" {
		name = "Расписание"
	}
	return &SheetsService{
		srv:           srv,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		store:         store,
		logger:        logger,
		rowCache:      make(map[int64]int),
	}, nil
}

// Run syncs on a fixed interval until the context is cancelled.
func (s *SheetsService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.Sync(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial sheets sync failed")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Sheets sync failed")
			}
		}
	}
}

// Sync rewrites the sheet with the next 60 days of confirmed reservations.
func (s *SheetsService) Sync(ctx context.Context) error {
	now := time.Now()
	reservations, err := s.store.ListReservationsBetween(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 60))
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}
	reservations = filterConfirmed(reservations)

	values := make([][]interface{}, 0, len(reservations)+1)
	values = append(values, headerRow)
	s.ClearCache()
	for i, r := range reservations {
		values = append(values, reservationRowValues(&r))
		// Rows are 1-based and the header occupies row 1.
		s.setCachedRow(r.ID, i+2)
	}

	clearRange := fmt.Sprintf("%s!A:Z", s.sheetName)
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", s.sheetName)
	body := &sheets.ValueRange{Values: values}
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, writeRange, body).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}

	s.logger.Info().Int("rows", len(reservations)).Msg("Sheets sync completed")
	return nil
}

func filterConfirmed(reservations []models.Reservation) []models.Reservation {
	out := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status != models.StatusCancelled {
			out = append(out, r)
		}
	}
	return out
}

func reservationRowValues(r *models.Reservation) []interface{} {
	room := r.RoomName
	if room == "" {
		room = r.RoomNumber
	}
	recurrence := ""
	if r.RecurrenceKind != "" && r.RecurrenceKind != models.RecurrenceNone {
		recurrence = string(r.RecurrenceKind)
	}
	return []interface{}{
		r.ID,
		room,
		r.StartTime.Format("2006-01-02"),
		r.StartTime.Format("15:04"),
		r.EndTime.Format("15:04"),
		r.FullName,
		r.Purpose,
		recurrence,
	}
}

func (s *SheetsService) setCachedRow(reservationID int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[reservationID] = row
}

func (s *SheetsService) getCachedRow(reservationID int64) (int, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	row, ok := s.rowCache[reservationID]
	return row, ok
}

func (s *SheetsService) deleteCachedRow(reservationID int64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, reservationID)
}

// ClearCache resets the reservation-to-row mapping.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

// MarkCancelled strikes a reservation out of the sheet between full syncs by
// clearing its cached row.
func (s *SheetsService) MarkCancelled(ctx context.Context, reservationID int64) error {
	row, ok := s.getCachedRow(reservationID)
	if !ok {
		return nil
	}
	defer s.deleteCachedRow(reservationID)

	clearRange := fmt.Sprintf("%s!A%d:Z%d", s.sheetName, row, row)
	_, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d: %w", row, err)
	}
	return nil
}
