// Package export builds xlsx reports of reservations for admins.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"darbot/internal/models"
)

var reportColumns = []string{
	"№", "Аудитория", "Дата", "Начало", "Окончание",
	"ФИО", "Цель", "Повтор", "Создано",
}

// Writer builds an xlsx workbook row by row.
type Writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet adds a new sheet with the given name.
func (w *Writer) AddSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}
	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Writer) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *Writer) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// Save writes the workbook to wr.
func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveToFile writes the workbook to disk.
func (w *Writer) SaveToFile(path string) error {
	return w.file.SaveAs(path)
}

// Close releases resources.
func (w *Writer) Close() error {
	return w.file.Close()
}

// ReservationsReport writes all given reservations onto one sheet named
// after the period.
func ReservationsReport(sheetName string, reservations []models.Reservation) (*Writer, error) {
	w := NewWriter()
	if err := w.AddSheet(sheetName); err != nil {
		return nil, err
	}
	if err := w.WriteHeader(reportColumns); err != nil {
		return nil, err
	}
	for _, r := range reservations {
		if err := w.WriteRow(reservationRow(r)); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func reservationRow(r models.Reservation) []interface{} {
	recurrence := ""
	if r.RecurrenceKind != "" && r.RecurrenceKind != models.RecurrenceNone {
		recurrence = string(r.RecurrenceKind)
		if r.RecurrenceUntil != nil {
			recurrence += " до " + r.RecurrenceUntil.Format("02.01.2006")
		}
	}
	room := r.RoomName
	if room == "" {
		room = r.RoomNumber
	}
	return []interface{}{
		r.ID,
		room,
		r.StartTime.Format("02.01.2006"),
		r.StartTime.Format("15:04"),
		r.EndTime.Format("15:04"),
		r.FullName,
		r.Purpose,
		recurrence,
		r.CreatedAt.Format("02.01.2006 15:04"),
	}
}

// FileName builds the export file name for a period.
func FileName(from, to time.Time) string {
	return fmt.Sprintf("reservations_%s_%s.xlsx",
		from.Format("20060102"), to.Format("20060102"))
}
