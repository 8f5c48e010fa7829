// Package room provides collaboration room management.
//
// A room is a named container for diagrams. Visibility is role-scoped:
// admins see every room, regular users see only the rooms they hold an
// access grant on (grants live in the auth package). Deleting a room
// cascades to its diagrams and access grants at the schema level.
//
// The package provides a Repository interface with a SQLite
// implementation.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package room
