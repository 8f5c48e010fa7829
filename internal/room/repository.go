package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for room persistence operations.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	Get(ctx context.Context, id string) (*Room, error)
	ListAll(ctx context.Context) ([]Room, error)
	ListAccessible(ctx context.Context, userID string) ([]Room, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed room repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new room. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, room *Room) error {
	if room.ID == "" {
		room.ID = "room-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	room.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	const query = `INSERT INTO rooms (id, name, description, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		room.ID, room.Name, nullStr(room.Description), nullStr(room.CreatedBy), now)
	if err != nil {
		return fmt.Errorf("inserting room %s: %w", room.ID, err)
	}
	return nil
}

// Get returns a single room by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Room, error) {
	const query = `SELECT id, name, description, created_by, created_at
		FROM rooms WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanRoom(row)
}

// ListAll returns every room, newest first. Admin-scoped listing.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]Room, error) {
	const query = `SELECT id, name, description, created_by, created_at
		FROM rooms ORDER BY created_at DESC, id`
	return r.queryRooms(ctx, query)
}

// ListAccessible returns the rooms the user holds an access grant on,
// newest first. Regular-user-scoped listing.
func (r *SQLiteRepository) ListAccessible(ctx context.Context, userID string) ([]Room, error) {
	const query = `SELECT r.id, r.name, r.description, r.created_by, r.created_at
		FROM rooms r
		INNER JOIN room_access ra ON r.id = ra.room_id
		WHERE ra.user_id = ?
		ORDER BY r.created_at DESC, r.id`
	return r.queryRooms(ctx, query, userID)
}

// Delete removes a room by ID. Diagrams and access grants cascade at
// the schema level.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting room %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// queryRooms executes a query and returns a slice of Room.
func (r *SQLiteRepository) queryRooms(ctx context.Context, query string, args ...any) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}

	if rooms == nil {
		rooms = []Room{}
	}
	return rooms, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanRoom scans a room from any scanner (Row or Rows).
func scanRoom(s scanner) (*Room, error) {
	var rm Room
	var description, createdBy sql.NullString
	var createdAt string

	err := s.Scan(&rm.ID, &rm.Name, &description, &createdBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}

	if description.Valid {
		rm.Description = description.String
	}
	if createdBy.Valid {
		rm.CreatedBy = createdBy.String
	}
	rm.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &rm, nil
}

// nullStr converts an empty string to a sql.NullString NULL.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
