package handlers

import (
	"net/http"
	"time"

	"vendoreval/db"
	"vendoreval/internal/export"
)

// ExportEvaluationsHandler отдаёт xlsx со всеми оценками. Требует и
// глобального флага экспорта, и права на аккаунте.
func (h *Handler) ExportEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.Log.Error("get settings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	if !settings.ExportEnabled {
		h.respondError(w, http.StatusForbidden, "Export is disabled")
		return
	}

	user, err := h.Store.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "User not found")
		return
	}
	if !user.CanExportData {
		h.respondError(w, http.StatusForbidden, "Export is not enabled for this account")
		return
	}

	// The export covers every vendor, so page through the whole list.
	const pageSize = 200
	var vendors []db.VendorWithScore
	for offset := 0; ; offset += pageSize {
		page, err := h.Store.GetVendors(r.Context(), pageSize, offset)
		if err != nil {
			h.Log.Error("list vendors", "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to export")
			return
		}
		vendors = append(vendors, page...)
		if len(page) < pageSize {
			break
		}
	}

	byVendor := make(map[int64][]db.Evaluation, len(vendors))
	for _, v := range vendors {
		evaluations, err := h.Store.GetEvaluationsForVendor(r.Context(), v.ID, 0)
		if err != nil {
			h.Log.Error("list vendor evaluations", "vendorId", v.ID, "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to export")
			return
		}
		byVendor[v.ID] = evaluations
	}

	workbook, err := export.BuildWorkbook(vendors, byVendor)
	if err != nil {
		h.Log.Error("build workbook", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to export")
		return
	}
	defer workbook.Close()

	filename := "evaluations-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := workbook.Write(w); err != nil {
		h.Log.Error("write workbook", "error", err)
	}
}
