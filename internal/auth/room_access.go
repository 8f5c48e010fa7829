package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RoomAccessRepository defines the interface for room access grant persistence.
type RoomAccessRepository interface {
	Grant(ctx context.Context, userID, roomID, createdBy string) error
	Revoke(ctx context.Context, userID, roomID string) error
	HasAccess(ctx context.Context, userID, roomID string) (bool, error)
	ListUsersForRoom(ctx context.Context, roomID string) ([]User, error)
	ListForUser(ctx context.Context, userID string) ([]RoomAccess, error)
}

// SQLiteRoomAccessRepository implements RoomAccessRepository using SQLite.
type SQLiteRoomAccessRepository struct {
	db *sql.DB
}

// NewRoomAccessRepository creates a new SQLite-backed room access repository.
func NewRoomAccessRepository(db *sql.DB) *SQLiteRoomAccessRepository {
	return &SQLiteRoomAccessRepository{db: db}
}

// Grant adds a room access grant for a user. Granting is idempotent:
// a duplicate grant is a no-op, not an error.
func (r *SQLiteRoomAccessRepository) Grant(ctx context.Context, userID, roomID, createdBy string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO room_access (user_id, room_id, created_by, created_at) VALUES (?, ?, ?, ?)",
		userID, roomID, nullString(createdBy), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("granting room %s to user %s: %w", roomID, userID, err)
	}
	return nil
}

// Revoke removes a room access grant. Revoking is idempotent: removing
// a grant that does not exist is a no-op, not an error.
func (r *SQLiteRoomAccessRepository) Revoke(ctx context.Context, userID, roomID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM room_access WHERE user_id = ? AND room_id = ?", userID, roomID)
	if err != nil {
		return fmt.Errorf("revoking room %s from user %s: %w", roomID, userID, err)
	}
	return nil
}

// HasAccess reports whether a grant exists for (userID, roomID).
// A missing room and a missing grant are indistinguishable here — both
// return false. Callers check room existence separately where the
// not-found vs forbidden distinction matters.
func (r *SQLiteRoomAccessRepository) HasAccess(ctx context.Context, userID, roomID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM room_access WHERE user_id = ? AND room_id = ?", userID, roomID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("checking room access: %w", err)
	}
	return true, nil
}

// ListUsersForRoom returns the users holding a grant on the given room.
func (r *SQLiteRoomAccessRepository) ListUsersForRoom(ctx context.Context, roomID string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.display_name, u.password_hash, u.role, u.created_by, u.created_at, u.updated_at
		 FROM users u
		 INNER JOIN room_access ra ON u.id = ra.user_id
		 WHERE ra.room_id = ?
		 ORDER BY u.email`, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing granted users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating granted users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// ListForUser returns all grants held by a user, ordered by room ID.
func (r *SQLiteRoomAccessRepository) ListForUser(ctx context.Context, userID string) ([]RoomAccess, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, room_id, created_by, created_at
		 FROM room_access WHERE user_id = ? ORDER BY room_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing room access: %w", err)
	}
	defer rows.Close()

	var access []RoomAccess
	for rows.Next() {
		var ra RoomAccess
		var createdBy sql.NullString
		var createdAt string

		if err := rows.Scan(&ra.UserID, &ra.RoomID, &createdBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning room access: %w", err)
		}

		if createdBy.Valid {
			ra.CreatedBy = createdBy.String
		}
		ra.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

		access = append(access, ra)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room access: %w", err)
	}

	if access == nil {
		access = []RoomAccess{}
	}
	return access, nil
}
