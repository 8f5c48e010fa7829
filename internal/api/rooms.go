package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drawhub/drawhub-core/internal/audit"
	"github.com/drawhub/drawhub-core/internal/auth"
	"github.com/drawhub/drawhub-core/internal/room"
)

// ─── Request/Response Types ────────────────────────────────────────

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type grantAccessRequest struct {
	UserID string `json:"user_id"`
}

// ─── Handlers ──────────────────────────────────────────────────────

// handleListRooms returns the rooms visible to the caller: every room
// for admins, granted rooms only for regular users. Zero grants means
// an empty list, not an error.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var rooms []room.Room
	var err error
	if claims.Role == auth.RoleAdmin {
		rooms, err = s.roomRepo.ListAll(r.Context())
	} else {
		rooms, err = s.roomRepo.ListAccessible(r.Context(), claims.Subject)
	}
	if err != nil {
		s.logger.Error("list rooms failed", "error", err)
		writeInternalError(w, "failed to list rooms")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// handleCreateRoom creates a new room. Admin only.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := room.ValidateName(req.Name); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	rm := &room.Room{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   claims.Subject,
	}
	if err := s.roomRepo.Create(r.Context(), rm); err != nil {
		s.logger.Error("create room failed", "error", err)
		writeInternalError(w, "failed to create room")
		return
	}

	s.logger.Info("room created", "room_id", rm.ID, "name", rm.Name, "created_by", claims.Subject)
	s.auditLog(audit.ActionCreate, audit.EntityRoom, rm.ID, claims.Subject, map[string]any{
		"name": rm.Name,
	})

	writeJSON(w, http.StatusCreated, rm)
}

// handleGetRoom returns a single room. The policy runs before the
// existence check, so a user without a grant gets 403 whether or not
// the room exists.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	decision, err := s.policy.AuthorizeRoom(r.Context(), claims.Subject, claims.Role, id)
	if err != nil {
		s.logger.Error("room authorization failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to get room")
		return
	}
	if !decision.Allowed() {
		writeForbidden(w, "no access to this room")
		return
	}

	rm, err := s.roomRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to get room")
		return
	}

	writeJSON(w, http.StatusOK, rm)
}

// handleDeleteRoom removes a room and, via schema cascade, its
// diagrams and access grants. Admin only.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	if err := s.roomRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("delete room failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to delete room")
		return
	}

	s.logger.Info("room deleted", "room_id", id, "deleted_by", claims.Subject)
	s.auditLog(audit.ActionDelete, audit.EntityRoom, id, claims.Subject, nil)

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleListRoomUsers returns the users holding a grant on a room.
// Admin only.
func (s *Server) handleListRoomUsers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.roomRepo.Get(r.Context(), id); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to list room users")
		return
	}

	users, err := s.accessRepo.ListUsersForRoom(r.Context(), id)
	if err != nil {
		s.logger.Error("list room users failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to list room users")
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": summaries,
		"count": len(summaries),
	})
}

// handleGrantAccess grants a user access to a room. Admin only.
// Granting an existing grant succeeds without side effects.
func (s *Server) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	var req grantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	if _, err := s.roomRepo.Get(r.Context(), id); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to grant access")
		return
	}

	if _, err := s.userRepo.GetByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("get user failed", "error", err, "user_id", req.UserID)
		writeInternalError(w, "failed to grant access")
		return
	}

	if err := s.accessRepo.Grant(r.Context(), req.UserID, id, claims.Subject); err != nil {
		s.logger.Error("grant access failed", "error", err, "room_id", id, "user_id", req.UserID)
		writeInternalError(w, "failed to grant access")
		return
	}

	s.logger.Info("room access granted", "room_id", id, "user_id", req.UserID, "granted_by", claims.Subject)
	s.auditLog(audit.ActionGrant, audit.EntityRoom, id, claims.Subject, map[string]any{
		"user_id": req.UserID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id": id,
		"user_id": req.UserID,
	})
}

// handleRevokeAccess removes a user's grant on a room. Admin only.
// Revoking a grant that does not exist still succeeds.
func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")
	claims := claimsFromContext(r.Context())

	if _, err := s.roomRepo.Get(r.Context(), id); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", id)
		writeInternalError(w, "failed to revoke access")
		return
	}

	if err := s.accessRepo.Revoke(r.Context(), userID, id); err != nil {
		s.logger.Error("revoke access failed", "error", err, "room_id", id, "user_id", userID)
		writeInternalError(w, "failed to revoke access")
		return
	}

	s.logger.Info("room access revoked", "room_id", id, "user_id", userID, "revoked_by", claims.Subject)
	s.auditLog(audit.ActionRevoke, audit.EntityRoom, id, claims.Subject, map[string]any{
		"user_id": userID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id": id,
		"user_id": userID,
	})
}
