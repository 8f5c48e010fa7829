package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SeedAdmin creates the bootstrap admin account from configuration.
//
// Seeding is idempotent: if an account with the configured email already
// exists (whatever its role), nothing is created. If email or password is
// unset the seed is skipped with a warning — the deployment then has no
// way in until one is provided.
//
// Returns true if an account was created.
func SeedAdmin(ctx context.Context, userRepo UserRepository, email, password, displayName string, logger *slog.Logger) (bool, error) {
	if email == "" || password == "" {
		logger.Warn("no admin credentials configured, skipping admin bootstrap",
			"hint", "set DRAWHUB_ADMIN_EMAIL and DRAWHUB_ADMIN_PASSWORD",
		)
		return false, nil
	}

	if !IsValidEmail(email) {
		return false, fmt.Errorf("admin bootstrap email %q is not a valid email", email)
	}

	_, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info("admin account already exists, skipping bootstrap", "email", NormalizeEmail(email))
		return false, nil
	case !errors.Is(err, ErrUserNotFound):
		return false, fmt.Errorf("checking for existing admin: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}

	if displayName == "" {
		displayName = "Admin"
	}

	admin := &User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         RoleAdmin,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("creating bootstrap admin: %w", err)
	}

	logger.Info("bootstrap admin account created", "email", admin.Email, "user_id", admin.ID)
	return true, nil
}
