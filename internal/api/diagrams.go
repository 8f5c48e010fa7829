package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drawhub/drawhub-core/internal/audit"
	"github.com/drawhub/drawhub-core/internal/diagram"
	"github.com/drawhub/drawhub-core/internal/room"
)

// ─── Request/Response Types ────────────────────────────────────────

type createDiagramRequest struct {
	RoomID string          `json:"room_id"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type updateDiagramRequest struct {
	Name *string         `json:"name,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// isJSONObject reports whether raw is a JSON object. Diagram payloads
// must be objects — arrays and scalars are rejected up front.
func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return json.Valid(raw)
		default:
			return false
		}
	}
	return false
}

// ─── Handlers ──────────────────────────────────────────────────────

// authorizeRoomOr403 runs the room policy and writes the 403 response
// on deny. Returns true when the caller may proceed.
func (s *Server) authorizeRoomOr403(w http.ResponseWriter, r *http.Request, roomID string) bool {
	claims := claimsFromContext(r.Context())

	decision, err := s.policy.AuthorizeRoom(r.Context(), claims.Subject, claims.Role, roomID)
	if err != nil {
		s.logger.Error("room authorization failed", "error", err, "room_id", roomID)
		writeInternalError(w, "authorization failed")
		return false
	}
	if !decision.Allowed() {
		writeForbidden(w, "no access to this room")
		return false
	}
	return true
}

// handleListDiagrams returns metadata for every diagram in a room,
// most recently updated first. Payloads are omitted.
func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	if !s.authorizeRoomOr403(w, r, roomID) {
		return
	}

	if _, err := s.roomRepo.Get(r.Context(), roomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", roomID)
		writeInternalError(w, "failed to list diagrams")
		return
	}

	metas, err := s.diagramRepo.ListByRoom(r.Context(), roomID)
	if err != nil {
		s.logger.Error("list diagrams failed", "error", err, "room_id", roomID)
		writeInternalError(w, "failed to list diagrams")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"diagrams": metas,
		"count":    len(metas),
	})
}

// handleCreateDiagram creates a diagram in a room at version 1.
func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.RoomID == "" {
		writeBadRequest(w, "room_id is required")
		return
	}
	if err := diagram.ValidateName(req.Name); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Data != nil && !isJSONObject(req.Data) {
		writeBadRequest(w, "data must be a JSON object")
		return
	}

	if !s.authorizeRoomOr403(w, r, req.RoomID) {
		return
	}

	if _, err := s.roomRepo.Get(r.Context(), req.RoomID); err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		s.logger.Error("get room failed", "error", err, "room_id", req.RoomID)
		writeInternalError(w, "failed to create diagram")
		return
	}

	d := &diagram.Diagram{
		RoomID:    req.RoomID,
		Name:      req.Name,
		Data:      req.Data,
		CreatedBy: claims.Subject,
	}
	if err := s.diagramRepo.Create(r.Context(), d); err != nil {
		s.logger.Error("create diagram failed", "error", err, "room_id", req.RoomID)
		writeInternalError(w, "failed to create diagram")
		return
	}

	s.logger.Info("diagram created", "diagram_id", d.ID, "room_id", d.RoomID, "created_by", claims.Subject)
	s.auditLog(audit.ActionCreate, audit.EntityDiagram, d.ID, claims.Subject, map[string]any{
		"room_id": d.RoomID,
		"name":    d.Name,
	})

	writeJSON(w, http.StatusCreated, d)
}

// handleGetDiagram returns a full diagram, payload included. The
// diagram's existence is checked before its room policy, so a missing
// ID is 404 for everyone.
func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.diagramRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, diagram.ErrDiagramNotFound) {
			writeNotFound(w, "diagram not found")
			return
		}
		s.logger.Error("get diagram failed", "error", err, "diagram_id", id)
		writeInternalError(w, "failed to get diagram")
		return
	}

	if !s.authorizeRoomOr403(w, r, d.RoomID) {
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDiagram applies a partial update. A payload write bumps
// the version by exactly one; a rename does not.
func (s *Server) handleUpdateDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	var req updateDiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == nil && req.Data == nil {
		writeBadRequest(w, "at least one of name or data is required")
		return
	}
	if req.Name != nil {
		if err := diagram.ValidateName(*req.Name); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	if req.Data != nil && !isJSONObject(req.Data) {
		writeBadRequest(w, "data must be a JSON object")
		return
	}

	existing, err := s.diagramRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, diagram.ErrDiagramNotFound) {
			writeNotFound(w, "diagram not found")
			return
		}
		s.logger.Error("get diagram for update failed", "error", err, "diagram_id", id)
		writeInternalError(w, "failed to update diagram")
		return
	}

	if !s.authorizeRoomOr403(w, r, existing.RoomID) {
		return
	}

	updated, err := s.diagramRepo.Update(r.Context(), id, diagram.UpdateParams{
		Name: req.Name,
		Data: req.Data,
	})
	if err != nil {
		if errors.Is(err, diagram.ErrDiagramNotFound) {
			writeNotFound(w, "diagram not found")
			return
		}
		s.logger.Error("update diagram failed", "error", err, "diagram_id", id)
		writeInternalError(w, "failed to update diagram")
		return
	}

	s.logger.Info("diagram updated",
		"diagram_id", id, "version", updated.Version, "updated_by", claims.Subject)
	s.auditLog(audit.ActionUpdate, audit.EntityDiagram, id, claims.Subject, map[string]any{
		"version": updated.Version,
	})

	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteDiagram removes a diagram.
func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := claimsFromContext(r.Context())

	d, err := s.diagramRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, diagram.ErrDiagramNotFound) {
			writeNotFound(w, "diagram not found")
			return
		}
		s.logger.Error("get diagram for delete failed", "error", err, "diagram_id", id)
		writeInternalError(w, "failed to delete diagram")
		return
	}

	if !s.authorizeRoomOr403(w, r, d.RoomID) {
		return
	}

	if err := s.diagramRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, diagram.ErrDiagramNotFound) {
			writeNotFound(w, "diagram not found")
			return
		}
		s.logger.Error("delete diagram failed", "error", err, "diagram_id", id)
		writeInternalError(w, "failed to delete diagram")
		return
	}

	s.logger.Info("diagram deleted", "diagram_id", id, "deleted_by", claims.Subject)
	s.auditLog(audit.ActionDelete, audit.EntityDiagram, id, claims.Subject, nil)

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
