package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"vendoreval/db"
	"vendoreval/models"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit и offset из query, с дефолтами и ограничениями
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 50, Offset: 0}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			params.Limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			params.Offset = o
		}
	}
	return params
}

// parseIDParam читает числовой параметр пути
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// CreateVendorHandler обрабатывает POST /api/vendors запрос
func (h *Handler) CreateVendorHandler(w http.ResponseWriter, r *http.Request) {
	var req models.VendorCreateRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Vendor name is required")
		return
	}

	taken, err := h.Store.VendorNameTaken(r.Context(), req.Name, 0)
	if err != nil {
		h.Log.Error("check vendor name", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create vendor")
		return
	}
	if taken {
		h.respondError(w, http.StatusConflict, "Vendor with this name already exists")
		return
	}

	contacts := req.Contacts
	if contacts == nil {
		contacts = []string{}
	}
	vendor := &db.Vendor{
		Name:        req.Name,
		Scopes:      pq.StringArray(req.Scopes),
		Contacts:    pq.StringArray(contacts),
		RFIStatus:   db.RFIPending,
		ChatEnabled: true,
	}
	if err := h.Store.CreateVendor(r.Context(), vendor); err != nil {
		h.Log.Error("create vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create vendor")
		return
	}

	h.respondJSON(w, http.StatusCreated, vendor)
}

// GetVendorsHandler возвращает список поставщиков со средним баллом
func (h *Handler) GetVendorsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	vendors, err := h.Store.GetVendors(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.Log.Error("list vendors", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get vendors")
		return
	}

	h.respondJSON(w, http.StatusOK, vendors)
}

func (h *Handler) GetVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	vendor, err := h.Store.GetVendor(r.Context(), vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get vendor")
		return
	}

	h.respondJSON(w, http.StatusOK, vendor)
}

// UpdateVendorIntakeHandler отмечает получение ответа на RFI
func (h *Handler) UpdateVendorIntakeHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	var req models.VendorIntakeUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	vendor, err := h.Store.UpdateVendorIntake(r.Context(), vendorID, *req.RFIReceived, req.RFIStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("update vendor intake", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update vendor")
		return
	}

	h.respondJSON(w, http.StatusOK, vendor)
}

// RenameVendorHandler переименовывает поставщика
func (h *Handler) RenameVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	var req models.VendorRenameRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.respondError(w, http.StatusBadRequest, "Vendor name is required")
		return
	}

	taken, err := h.Store.VendorNameTaken(r.Context(), req.Name, vendorID)
	if err != nil {
		h.Log.Error("check vendor name", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to rename vendor")
		return
	}
	if taken {
		h.respondError(w, http.StatusConflict, "Vendor with this name already exists")
		return
	}

	vendor, err := h.Store.RenameVendor(r.Context(), vendorID, req.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("rename vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to rename vendor")
		return
	}

	h.respondJSON(w, http.StatusOK, vendor)
}

// VendorDecisionHandler фиксирует прямое решение, минуя голосование
func (h *Handler) VendorDecisionHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.Log.Error("get settings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to record decision")
		return
	}
	if !settings.DirectDecisionEnabled {
		h.respondError(w, http.StatusForbidden, "Direct decisions are disabled")
		return
	}

	var req models.DecisionRequest
	if !h.decode(w, r, &req) {
		return
	}

	vendor, err := h.Store.SetVendorDecision(r.Context(), vendorID, req.Decision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("set vendor decision", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to record decision")
		return
	}

	h.respondJSON(w, http.StatusOK, vendor)
}

func (h *Handler) DeleteVendorHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	if _, err := h.Store.GetVendor(r.Context(), vendorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete vendor")
		return
	}

	if err := h.Store.DeleteVendor(r.Context(), vendorID); err != nil {
		h.Log.Error("delete vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete vendor")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearVendorDataHandler удаляет все данные оценки поставщика
func (h *Handler) ClearVendorDataHandler(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}

	counts, err := h.Store.ClearVendorData(r.Context(), vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return
		}
		h.Log.Error("clear vendor data", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to clear vendor data")
		return
	}

	h.Log.Info("vendor data cleared", "vendorId", vendorID,
		"evaluations", counts.Evaluations, "votes", counts.Votes, "messages", counts.Messages)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"cleared": counts})
}
