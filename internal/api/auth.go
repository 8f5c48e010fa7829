package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/drawhub/drawhub-core/internal/audit"
	"github.com/drawhub/drawhub-core/internal/auth"
)

// ─── Request/Response Types ────────────────────────────────────────

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

// userSummary is the public projection of an account: no hash, no
// audit fields.
type userSummary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        auth.Role `json:"role"`
}

func summarize(u *auth.User) userSummary {
	return userSummary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// ─── Handlers ──────────────────────────────────────────────────────

// handleLogin authenticates a user and returns a session token.
//
// Unknown email and wrong password produce the same 401 body, so the
// endpoint cannot be used to probe for registered addresses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	user, err := s.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeUnauthorized(w, auth.ErrInvalidCredentials.Error())
			return
		}
		s.logger.Error("login lookup failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("password verification failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}
	if !ok {
		writeUnauthorized(w, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := auth.IssueToken(user, s.secCfg.JWT.Secret, s.secCfg.JWT.TokenTTL)
	if err != nil {
		s.logger.Error("token issue failed", "error", err, "user_id", user.ID)
		writeInternalError(w, "login failed")
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)
	s.auditLog(audit.ActionLogin, audit.EntityUser, user.ID, user.ID, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  summarize(user),
	})
}

// handleMe echoes the authenticated identity from the token claims.
// No database hit: the response reflects the token, staleness bounded
// by its TTL.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":    claims.Subject,
		"email": claims.Email,
		"role":  claims.Role,
	})
}
