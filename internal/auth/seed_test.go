package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedAdmin_CreatesAccount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created, err := SeedAdmin(ctx, repo, "admin@example.com", "bootstrap-password", "Admin", discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if !created {
		t.Fatal("SeedAdmin() should create account on empty database")
	}

	admin, err := repo.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", admin.Role, RoleAdmin)
	}

	ok, err := VerifyPassword("bootstrap-password", admin.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("configured password should verify against stored hash")
	}
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created, err := SeedAdmin(ctx, repo, "admin@example.com", "first-password", "Admin", discardLogger())
	if err != nil || !created {
		t.Fatalf("first SeedAdmin() = (%v, %v), want (true, nil)", created, err)
	}

	// Second run with a different password must not create or overwrite
	created, err = SeedAdmin(ctx, repo, "admin@example.com", "second-password", "Admin", discardLogger())
	if err != nil {
		t.Fatalf("second SeedAdmin() error = %v", err)
	}
	if created {
		t.Error("second SeedAdmin() should skip when the account exists")
	}

	admin, _ := repo.GetByEmail(ctx, "admin@example.com")
	ok, _ := VerifyPassword("first-password", admin.PasswordHash)
	if !ok {
		t.Error("original password should survive a repeated seed")
	}

	count, _ := repo.Count(ctx)
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSeedAdmin_SkipsWhenUnconfigured(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, tc := range []struct {
		name, email, password string
	}{
		{"no email", "", "password"},
		{"no password", "admin@example.com", ""},
		{"neither", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			created, err := SeedAdmin(ctx, repo, tc.email, tc.password, "Admin", discardLogger())
			if err != nil {
				t.Fatalf("SeedAdmin() error = %v", err)
			}
			if created {
				t.Error("SeedAdmin() should skip when unconfigured")
			}
		})
	}

	count, _ := repo.Count(ctx)
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestSeedAdmin_RejectsInvalidEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	_, err := SeedAdmin(context.Background(), repo, "not-an-email", "password", "Admin", discardLogger())
	if err == nil {
		t.Error("SeedAdmin() should reject an invalid email")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"jack@example.com",
		"a.b+tag@sub.example.co.uk",
	}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"two@@example.com",
		"@example.com",
		"user@nodot",
		"spaces in@example.com",
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}
