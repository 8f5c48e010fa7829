package diagram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for diagram persistence operations.
type Repository interface {
	Create(ctx context.Context, d *Diagram) error
	Get(ctx context.Context, id string) (*Diagram, error)
	ListByRoom(ctx context.Context, roomID string) ([]Metadata, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Diagram, error)
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed diagram repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const diagramColumns = "id, room_id, name, data, version, created_by, created_at, updated_at"

// Create inserts a new diagram at version 1. The ID is generated if
// empty; a nil payload stores an empty JSON object.
func (r *SQLiteRepository) Create(ctx context.Context, d *Diagram) error {
	if d.ID == "" {
		d.ID = "dgm-" + uuid.NewString()[:8]
	}
	if d.Data == nil {
		d.Data = []byte("{}")
	}
	d.Version = 1

	now := time.Now().UTC().Format(time.RFC3339)
	d.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	d.UpdatedAt = d.CreatedAt

	const query = `INSERT INTO diagrams (id, room_id, name, data, version, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.RoomID, d.Name, string(d.Data), nullStr(d.CreatedBy), now, now)
	if err != nil {
		return fmt.Errorf("inserting diagram %s: %w", d.ID, err)
	}
	return nil
}

// Get returns a single diagram by ID, payload included.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Diagram, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+diagramColumns+" FROM diagrams WHERE id = ?", id)
	return scanDiagram(row)
}

// ListByRoom returns metadata for every diagram in a room, most
// recently updated first. Payloads are deliberately not selected.
func (r *SQLiteRepository) ListByRoom(ctx context.Context, roomID string) ([]Metadata, error) {
	const query = `SELECT id, room_id, name, version, created_by, created_at, updated_at
		FROM diagrams WHERE room_id = ?
		ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying diagrams for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var metas []Metadata
	for rows.Next() {
		var m Metadata
		var createdBy sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&m.ID, &m.RoomID, &m.Name, &m.Version, &createdBy, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning diagram row: %w", err)
		}

		if createdBy.Valid {
			m.CreatedBy = createdBy.String
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diagram rows: %w", err)
	}

	if metas == nil {
		metas = []Metadata{}
	}
	return metas, nil
}

// Update applies a partial update and returns the stored row as it
// looks afterwards. The SET clause is built from the fields actually
// present; version = version + 1 rides inside the same statement as
// the payload write, so the bump is atomic with it. updated_at always
// refreshes.
func (r *SQLiteRepository) Update(ctx context.Context, id string, params UpdateParams) (*Diagram, error) {
	if params.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if params.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *params.Name)
	}
	if params.Data != nil {
		sets = append(sets, "data = ?", "version = version + 1")
		args = append(args, string(params.Data))
	}

	args = append(args, id)
	query := "UPDATE diagrams SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating diagram %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrDiagramNotFound
	}

	return r.Get(ctx, id)
}

// Delete removes a diagram by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM diagrams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting diagram %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDiagramNotFound
	}
	return nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanDiagram scans a full diagram from any scanner (Row or Rows).
func scanDiagram(s scanner) (*Diagram, error) {
	var d Diagram
	var data string
	var createdBy sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&d.ID, &d.RoomID, &d.Name, &data, &d.Version, &createdBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiagramNotFound
		}
		return nil, fmt.Errorf("scanning diagram: %w", err)
	}

	d.Data = []byte(data)
	if createdBy.Valid {
		d.CreatedBy = createdBy.String
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &d, nil
}

// nullStr converts an empty string to a sql.NullString NULL.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
