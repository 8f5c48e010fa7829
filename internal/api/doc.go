// Package api provides the HTTP REST API server for drawhub.
//
// It exposes authentication, room and grant management, versioned
// diagram documents, user administration, and the audit trail to
// clients over JSON.
//
// The server follows the standard component lifecycle:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Authorization is two-layered: requireAdmin gates admin-only routes,
// and RoomPolicy gates room-scoped resources (admins bypass grants,
// regular users need one). Handlers never inspect the grant table
// directly.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
