package auth

import (
	"context"
	"fmt"
)

// Decision is the outcome of an authorisation check.
type Decision int

const (
	// Deny blocks the operation. Zero value on purpose: an unresolved
	// decision denies.
	Deny Decision = iota

	// Allow permits the operation.
	Allow
)

// Allowed reports whether the decision permits the operation.
func (d Decision) Allowed() bool {
	return d == Allow
}

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// RoomPolicy resolves whether a user may operate on a room's resources.
//
// It is the single place the admin bypass lives: handlers never test
// roles against rooms themselves, they ask the policy. The decision is
// resolved fresh on every call — grants must take effect on the very
// next request after they change, so nothing is cached.
type RoomPolicy struct {
	grants RoomAccessRepository
}

// NewRoomPolicy creates a policy backed by the given grant repository.
func NewRoomPolicy(grants RoomAccessRepository) *RoomPolicy {
	return &RoomPolicy{grants: grants}
}

// AuthorizeRoom decides whether the user may read/write the room's
// resources. Admins are allowed unconditionally, with no grant lookup.
// Everyone else needs an existing grant. A nonexistent room yields Deny,
// same as a missing grant; callers that must distinguish not-found from
// forbidden verify room existence first.
func (p *RoomPolicy) AuthorizeRoom(ctx context.Context, userID string, role Role, roomID string) (Decision, error) {
	if role == RoleAdmin {
		return Allow, nil
	}

	ok, err := p.grants.HasAccess(ctx, userID, roomID)
	if err != nil {
		return Deny, fmt.Errorf("resolving room access: %w", err)
	}
	if ok {
		return Allow, nil
	}
	return Deny, nil
}
