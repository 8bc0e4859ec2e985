package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"vendoreval/models"
)

// GetVotesHandler возвращает состояние голосования по поставщику
func (h *Handler) GetVotesHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	stats, err := h.Store.GetVoteStats(r.Context(), vendorID, principal.UserID)
	if err != nil {
		h.Log.Error("get vote stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get votes")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// CastVoteHandler регистрирует голос; повторный голос заменяет прежний
func (h *Handler) CastVoteHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	var req models.VoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.Store.GetVendor(r.Context(), vendorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	stats, err := h.Store.CastVote(r.Context(), vendorID, principal.UserID, req.Vote)
	if err != nil {
		h.Log.Error("cast vote", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	h.Log.Info("vote cast", "vendorId", vendorID, "userId", principal.UserID, "vote", req.Vote)
	h.respondJSON(w, http.StatusOK, stats)
}

// ClearVoteHandler снимает голос пользователя
func (h *Handler) ClearVoteHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	stats, err := h.Store.ClearVote(r.Context(), vendorID, principal.UserID)
	if err != nil {
		h.Log.Error("clear vote", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to clear vote")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}
