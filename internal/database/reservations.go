package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"darbot/internal/models"
)

const reservationColumns = `r.id, r.room_id, r.user_id, r.full_name, r.purpose,
	r.start_time, r.end_time, r.status, r.recurrence_kind, r.recurrence_until,
	r.recurrence_group, r.created_at, rm.name, rm.number`

// ListConfirmedReservations returns the confirmed reservations of a room
// ordered by start time.
func (db *DB) ListConfirmedReservations(ctx context.Context, roomID int64) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		WHERE r.room_id = ? AND r.status = ?
		ORDER BY r.start_time`, roomID, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list reservations for room %d: %w", roomID, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// CreateReservation inserts a confirmed reservation. The overlap check runs
// inside the same immediate transaction as the insert, so a slot that was
// free at dialog time but got taken meanwhile fails with
// models.ErrTimeConflict instead of producing a double booking.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, "SELECT is_active FROM rooms WHERE id = ?", r.RoomID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrRoomNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("check room %d: %w", r.RoomID, err)
	}
	if !active {
		return 0, models.ErrRoomNotFound
	}

	var conflicts int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE room_id = ? AND status = ? AND start_time < ? AND ? < end_time`,
		r.RoomID, models.StatusConfirmed, r.EndTime, r.StartTime).Scan(&conflicts)
	if err != nil {
		return 0, fmt.Errorf("check conflicts: %w", err)
	}
	if conflicts > 0 {
		return 0, models.ErrTimeConflict
	}

	kind := r.RecurrenceKind
	if kind == "" {
		kind = models.RecurrenceNone
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reservations
			(room_id, user_id, full_name, purpose, start_time, end_time,
			 status, recurrence_kind, recurrence_until, recurrence_group)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoomID, r.UserID, r.FullName, r.Purpose, r.StartTime, r.EndTime,
		models.StatusConfirmed, kind, r.RecurrenceUntil, r.RecurrenceGroup)
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reservation: %w", err)
	}
	r.ID = id
	return id, nil
}

// GetReservation returns a reservation by id.
func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		WHERE r.id = ?`, id)
	res, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return res, nil
}

// CancelReservation marks a confirmed reservation as cancelled.
func (db *DB) CancelReservation(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE reservations SET status = ? WHERE id = ? AND status = ?",
		models.StatusCancelled, id, models.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("cancel reservation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrReservationNotFound
	}
	return nil
}

// CancelSeries cancels every remaining confirmed reservation of a recurrence
// group starting at from, and returns how many were cancelled.
func (db *DB) CancelSeries(ctx context.Context, group string, from time.Time) (int, error) {
	if group == "" {
		return 0, models.ErrReservationNotFound
	}
	res, err := db.ExecContext(ctx, `
		UPDATE reservations SET status = ?
		WHERE recurrence_group = ? AND status = ? AND start_time >= ?`,
		models.StatusCancelled, group, models.StatusConfirmed, from)
	if err != nil {
		return 0, fmt.Errorf("cancel series %s: %w", group, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListUserReservations returns a user's confirmed reservations starting at
// from, ordered by start time.
func (db *DB) ListUserReservations(ctx context.Context, userID int64, from time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		WHERE r.user_id = ? AND r.status = ? AND r.end_time > ?
		ORDER BY r.start_time`, userID, models.StatusConfirmed, from)
	if err != nil {
		return nil, fmt.Errorf("list reservations for user %d: %w", userID, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ListReservationsBetween returns confirmed reservations overlapping
// [from, to) across all rooms, ordered by room and start time. Used for the
// day schedule view and exports.
func (db *DB) ListReservationsBetween(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		WHERE r.status = ? AND r.start_time < ? AND ? < r.end_time
		ORDER BY rm.floor, rm.number, r.start_time`,
		models.StatusConfirmed, to, from)
	if err != nil {
		return nil, fmt.Errorf("list reservations between %s and %s: %w",
			from.Format("2006-01-02"), to.Format("2006-01-02"), err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// RoomDaySchedule returns a room's confirmed reservations on one calendar
// day, ordered by start time.
func (db *DB) RoomDaySchedule(ctx context.Context, roomID int64, day time.Time) ([]models.Reservation, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	rows, err := db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		WHERE r.room_id = ? AND r.status = ? AND r.start_time < ? AND ? < r.end_time
		ORDER BY r.start_time`, roomID, models.StatusConfirmed, end, start)
	if err != nil {
		return nil, fmt.Errorf("day schedule for room %d: %w", roomID, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var r models.Reservation
	var purpose, group sql.NullString
	var until sql.NullTime
	var roomName sql.NullString
	err := row.Scan(&r.ID, &r.RoomID, &r.UserID, &r.FullName, &purpose,
		&r.StartTime, &r.EndTime, &r.Status, &r.RecurrenceKind, &until,
		&group, &r.CreatedAt, &roomName, &r.RoomNumber)
	if err != nil {
		return nil, err
	}
	r.Purpose = purpose.String
	r.RecurrenceGroup = group.String
	r.RoomName = roomName.String
	if until.Valid {
		t := until.Time
		r.RecurrenceUntil = &t
	}
	return &r, nil
}

func scanReservations(rows *sql.Rows) ([]models.Reservation, error) {
	var out []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
