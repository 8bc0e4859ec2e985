package handlers

import (
	"net/http"

	"vendoreval/db"
	"vendoreval/models"
)

// GetSettingsHandler обрабатывает GET /api/admin/settings
func (h *Handler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.Log.Error("get settings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get settings")
		return
	}
	h.respondJSON(w, http.StatusOK, settings)
}

// UpdateSettingsHandler обрабатывает PUT /api/admin/settings. Все четыре
// флага обязательны, чтобы частичное обновление не сбрасывало остальные.
func (h *Handler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	settings := &db.AdminSettings{
		ChatEnabled:           *req.ChatEnabled,
		DirectDecisionEnabled: *req.DirectDecisionEnabled,
		PrintEnabled:          *req.PrintEnabled,
		ExportEnabled:         *req.ExportEnabled,
	}
	if err := h.Store.UpdateSettings(r.Context(), settings); err != nil {
		h.Log.Error("update settings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	h.Log.Info("settings updated",
		"chat", settings.ChatEnabled, "directDecision", settings.DirectDecisionEnabled,
		"print", settings.PrintEnabled, "export", settings.ExportEnabled)
	h.respondJSON(w, http.StatusOK, settings)
}
