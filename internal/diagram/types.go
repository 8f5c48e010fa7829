package diagram

import (
	"encoding/json"
	"time"
)

// Diagram represents a versioned diagram document within a room.
// Data is the serialized document payload, treated as opaque JSON.
type Diagram struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"room_id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data,omitempty"`
	Version   int64           `json:"version"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Metadata is the listing projection of a diagram: everything except
// the payload.
type Metadata struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateParams carries a partial update. Nil fields are absent and
// leave the stored value untouched; Data non-nil replaces the payload
// and bumps the version.
type UpdateParams struct {
	Name *string
	Data json.RawMessage
}

// IsEmpty reports whether the update carries no changes at all.
func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Data == nil
}
