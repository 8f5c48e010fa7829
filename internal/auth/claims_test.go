package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParseToken(t *testing.T) {
	user := &User{
		ID:    "usr-001",
		Email: "jack@example.com",
		Role:  RoleAdmin,
	}
	secret := "test-secret-key-for-jwt-signing"

	token, err := IssueToken(user, secret, 24)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	if token == "" {
		t.Fatal("IssueToken() returned empty token")
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != "usr-001" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-001")
	}

	if claims.Email != "jack@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "jack@example.com")
	}

	if claims.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}

	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	user := &User{ID: "usr-001", Email: "jack@example.com", Role: RoleUser}

	token, err := IssueToken(user, "correct-secret", 24)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	_, err = ParseToken(token, "wrong-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid for wrong secret", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	// Sign an already-expired token by hand so the test doesn't sleep
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		Email: "jack@example.com",
		Role:  RoleUser,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = ParseToken(signed, "secret")
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	// Empty string
	_, err := ParseToken("", "secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid for empty token", err)
	}

	// Wrong number of segments
	_, err = ParseToken("abc.def", "secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid for malformed JWT", err)
	}

	// Garbage
	_, err = ParseToken("not-a-valid-jwt", "secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid for garbage token", err)
	}
}

func TestParseToken_MissingSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "jack@example.com",
		Role:  RoleUser,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	_, err = ParseToken(signed, "secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid for missing subject", err)
	}
}

func TestIssueToken_DefaultTTL(t *testing.T) {
	user := &User{ID: "usr-001", Email: "jack@example.com", Role: RoleUser}

	// TTL of 0 should default to 24 hours
	token, err := IssueToken(user, "secret", 0)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	expectedExpiry := time.Now().Add(24 * time.Hour)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL should be ~24 hours, got expiry diff of %v", diff)
	}
}
