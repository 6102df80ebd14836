package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"darbot/internal/models"
)

const roomColumns = "id, number, name, floor, capacity, equipment, description, is_active, created_at"

// ListFloors returns the distinct floors that have active rooms, ascending.
func (db *DB) ListFloors(ctx context.Context) ([]int, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT DISTINCT floor FROM rooms WHERE is_active = 1 ORDER BY floor")
	if err != nil {
		return nil, fmt.Errorf("list floors: %w", err)
	}
	defer rows.Close()

	var floors []int
	for rows.Next() {
		var f int
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan floor: %w", err)
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

// ListRoomsByFloor returns the active rooms on a floor ordered by number.
func (db *DB) ListRoomsByFloor(ctx context.Context, floor int) ([]models.Room, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE floor = ? AND is_active = 1 ORDER BY number", floor)
	if err != nil {
		return nil, fmt.Errorf("list rooms on floor %d: %w", floor, err)
	}
	defer rows.Close()
	return scanRooms(rows)
}

// ListRooms returns all active rooms ordered by floor and number.
func (db *DB) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE is_active = 1 ORDER BY floor, number")
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	return scanRooms(rows)
}

// GetRoom returns a room by id, active or not.
func (db *DB) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ?", id)
	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room %d: %w", id, err)
	}
	return room, nil
}

// CreateRoom inserts a room and returns its id.
func (db *DB) CreateRoom(ctx context.Context, r *models.Room) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO rooms (number, name, floor, capacity, equipment, description, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		r.Number, r.Name, r.Floor, r.Capacity, r.Equipment, r.Description)
	if err != nil {
		return 0, fmt.Errorf("create room %s: %w", r.Number, err)
	}
	return res.LastInsertId()
}

// DeactivateRoom hides a room from new bookings. Existing reservations are
// untouched.
func (db *DB) DeactivateRoom(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "UPDATE rooms SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivate room %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrRoomNotFound
	}
	return nil
}

// SeedDefaultRooms inserts the building's rooms on first start. Does nothing
// if any room already exists.
func (db *DB) SeedDefaultRooms(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rooms").Scan(&count); err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Room{
		{Number: "101", Floor: 1, Capacity: 15, Description: "Малый зал"},
		{Number: "102", Floor: 1, Capacity: 30, Equipment: "Проектор, экран"},
		{Number: "103", Floor: 1, Capacity: 12},
		{Number: "201", Floor: 2, Capacity: 20, Equipment: "Пианино"},
		{Number: "202", Floor: 2, Capacity: 25},
		{Number: "214", Name: "Конференц-зал", Floor: 2, Capacity: 60, Equipment: "Проектор, экран, микрофоны"},
		{Number: "301", Floor: 3, Capacity: 18},
		{Number: "302", Floor: 3, Capacity: 10, Description: "Репетиционная"},
	}
	for _, r := range defaults {
		if _, err := db.CreateRoom(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var r models.Room
	var name, equipment, description sql.NullString
	err := row.Scan(&r.ID, &r.Number, &name, &r.Floor, &r.Capacity,
		&equipment, &description, &r.IsActive, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Name = name.String
	r.Equipment = equipment.String
	r.Description = description.String
	return &r, nil
}

func scanRooms(rows *sql.Rows) ([]models.Room, error) {
	var out []models.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
