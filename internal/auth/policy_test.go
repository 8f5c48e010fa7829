package auth

import (
	"context"
	"testing"
)

func TestRoomPolicy_AdminBypassesGrants(t *testing.T) {
	db := testDB(t)
	policy := NewRoomPolicy(NewRoomAccessRepository(db))
	ctx := context.Background()

	seedTestRooms(t, db)
	admin := seedTestUser(t, db, "admin@example.com", RoleAdmin)

	// No grant exists for the admin on any room
	for _, room := range []string{"room-sprint", "room-arch", "room-retro"} {
		d, err := policy.AuthorizeRoom(ctx, admin.ID, RoleAdmin, room)
		if err != nil {
			t.Fatalf("AuthorizeRoom(%s) error = %v", room, err)
		}
		if !d.Allowed() {
			t.Errorf("AuthorizeRoom(%s) = %v, want allow for admin", room, d)
		}
	}
}

func TestRoomPolicy_UserRequiresGrant(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	policy := NewRoomPolicy(grants)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	d, err := policy.AuthorizeRoom(ctx, user.ID, RoleUser, "room-sprint")
	if err != nil {
		t.Fatalf("AuthorizeRoom() error = %v", err)
	}
	if d.Allowed() {
		t.Error("user without grant should be denied")
	}

	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	d, err = policy.AuthorizeRoom(ctx, user.ID, RoleUser, "room-sprint")
	if err != nil {
		t.Fatalf("AuthorizeRoom() error = %v", err)
	}
	if !d.Allowed() {
		t.Error("user with grant should be allowed")
	}

	// Grant is scoped to the one room
	d, _ = policy.AuthorizeRoom(ctx, user.ID, RoleUser, "room-arch")
	if d.Allowed() {
		t.Error("grant on one room should not allow another")
	}
}

func TestRoomPolicy_RevocationIsImmediate(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	policy := NewRoomPolicy(grants)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "emma@example.com", RoleUser)

	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if d, _ := policy.AuthorizeRoom(ctx, user.ID, RoleUser, "room-sprint"); !d.Allowed() {
		t.Fatal("user with grant should be allowed")
	}

	if err := grants.Revoke(ctx, user.ID, "room-sprint"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	// Nothing is cached: the very next check after revocation denies
	d, err := policy.AuthorizeRoom(ctx, user.ID, RoleUser, "room-sprint")
	if err != nil {
		t.Fatalf("AuthorizeRoom() error = %v", err)
	}
	if d.Allowed() {
		t.Error("revoked user should be denied on the next check")
	}
}

func TestRoomPolicy_NonexistentRoomDenies(t *testing.T) {
	db := testDB(t)
	policy := NewRoomPolicy(NewRoomAccessRepository(db))

	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	d, err := policy.AuthorizeRoom(context.Background(), user.ID, RoleUser, "room-ghost")
	if err != nil {
		t.Fatalf("AuthorizeRoom() error = %v", err)
	}
	if d.Allowed() {
		t.Error("nonexistent room should deny")
	}
}

func TestDecision_String(t *testing.T) {
	if Allow.String() != "allow" {
		t.Errorf("Allow.String() = %q, want %q", Allow.String(), "allow")
	}
	if Deny.String() != "deny" {
		t.Errorf("Deny.String() = %q, want %q", Deny.String(), "deny")
	}
	// Zero value denies
	var d Decision
	if d.Allowed() {
		t.Error("zero-value Decision should deny")
	}
}
