// Package diagram provides versioned diagram document storage.
//
// A diagram belongs to exactly one room and carries an opaque JSON
// payload plus a monotonic version counter. The counter starts at 1 and
// increments by exactly one on every payload write; renames never bump
// it. The bump happens inside the UPDATE statement itself, so
// concurrent writers can never produce duplicate or skipped versions.
//
// Listing a room's diagrams returns metadata only — the payload can be
// large and is fetched one diagram at a time.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package diagram
