package auth

import (
	"context"
	"testing"
)

func TestRoomAccess_GrantAndHasAccess(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	ok, err := grants.HasAccess(ctx, user.ID, "room-sprint")
	if err != nil {
		t.Fatalf("HasAccess() error = %v", err)
	}
	if ok {
		t.Error("user should not have access before grant")
	}

	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	ok, err = grants.HasAccess(ctx, user.ID, "room-sprint")
	if err != nil {
		t.Fatalf("HasAccess() error = %v", err)
	}
	if !ok {
		t.Error("user should have access after grant")
	}

	// Grant does not leak into other rooms
	ok, _ = grants.HasAccess(ctx, user.ID, "room-arch")
	if ok {
		t.Error("grant on one room should not grant another")
	}
}

func TestRoomAccess_Grant_Idempotent(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "emma@example.com", RoleUser)

	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	// Second grant of the same (user, room) pair is a no-op
	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("duplicate Grant() error = %v, want nil", err)
	}

	access, err := grants.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(access) != 1 {
		t.Errorf("ListForUser() returned %d grants, want 1", len(access))
	}
}

func TestRoomAccess_Revoke(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	if err := grants.Grant(ctx, user.ID, "room-sprint", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if err := grants.Revoke(ctx, user.ID, "room-sprint"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	ok, _ := grants.HasAccess(ctx, user.ID, "room-sprint")
	if ok {
		t.Error("user should not have access after revoke")
	}
}

func TestRoomAccess_Revoke_Idempotent(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	// Revoking a grant that was never made is a no-op
	if err := grants.Revoke(ctx, user.ID, "room-sprint"); err != nil {
		t.Fatalf("Revoke() of nonexistent grant error = %v, want nil", err)
	}
}

func TestRoomAccess_ListUsersForRoom(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	jack := seedTestUser(t, db, "jack@example.com", RoleUser)
	emma := seedTestUser(t, db, "emma@example.com", RoleUser)
	seedTestUser(t, db, "outsider@example.com", RoleUser)

	for _, u := range []*User{jack, emma} {
		if err := grants.Grant(ctx, u.ID, "room-sprint", ""); err != nil {
			t.Fatalf("Grant() error = %v", err)
		}
	}

	users, err := grants.ListUsersForRoom(ctx, "room-sprint")
	if err != nil {
		t.Fatalf("ListUsersForRoom() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsersForRoom() returned %d users, want 2", len(users))
	}
	// Ordered by email
	if users[0].Email != "emma@example.com" || users[1].Email != "jack@example.com" {
		t.Errorf("users = [%s, %s], want ordered by email", users[0].Email, users[1].Email)
	}
}

func TestRoomAccess_ListForUser(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	access, err := grants.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(access) != 0 {
		t.Errorf("ListForUser() should return empty, got %d", len(access))
	}

	for _, room := range []string{"room-sprint", "room-retro"} {
		if err := grants.Grant(ctx, user.ID, room, ""); err != nil {
			t.Fatalf("Grant(%s) error = %v", room, err)
		}
	}

	access, err = grants.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}
	if len(access) != 2 {
		t.Errorf("ListForUser() returned %d grants, want 2", len(access))
	}
}

func TestRoomAccess_RoomDeletionCascades(t *testing.T) {
	db := testDB(t)
	grants := NewRoomAccessRepository(db)
	ctx := context.Background()

	seedTestRooms(t, db)
	user := seedTestUser(t, db, "jack@example.com", RoleUser)

	if err := grants.Grant(ctx, user.ID, "room-retro", ""); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	if _, err := db.Exec("DELETE FROM rooms WHERE id = 'room-retro'"); err != nil {
		t.Fatalf("deleting room: %v", err)
	}

	ok, err := grants.HasAccess(ctx, user.ID, "room-retro")
	if err != nil {
		t.Fatalf("HasAccess() error = %v", err)
	}
	if ok {
		t.Error("grant should cascade-delete with the room")
	}
}
