package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"vendoreval/models"
)

// ListUsersHandler возвращает всех пользователей со статусами и правами
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		h.Log.Error("list users", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get users")
		return
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, userInfo(&users[i]))
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"users": infos})
}

// ListPendingUsersHandler возвращает заявки, ожидающие решения админа
func (h *Handler) ListPendingUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetPendingUsers(r.Context())
	if err != nil {
		h.Log.Error("list pending users", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get pending users")
		return
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, userInfo(&users[i]))
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": infos,
		"count": len(infos),
	})
}

// ApproveUserHandler одобряет или отклоняет заявку на регистрацию
func (h *Handler) ApproveUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	var req models.ApprovalRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Store.SetUserApproval(r.Context(), userID, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("set user approval", "userId", userID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update approval status")
		return
	}

	h.Log.Info("user approval updated", "userId", userID, "status", req.Status)
	h.respondJSON(w, http.StatusOK, userInfo(user))
}

// UpdateUserRoleHandler меняет роль пользователя
func (h *Handler) UpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	var req models.RoleUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Store.SetUserRole(r.Context(), userID, req.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("set user role", "userId", userID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update role")
		return
	}

	h.Log.Info("user role updated", "userId", userID, "role", req.Role)
	h.respondJSON(w, http.StatusOK, userInfo(user))
}

// UpdateUserPermissionsHandler задаёт права на чат и экспорт
func (h *Handler) UpdateUserPermissionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	var req models.PermissionsUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.Store.SetUserPermissions(r.Context(), userID, *req.CanAccessChat, *req.CanExportData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("set user permissions", "userId", userID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update permissions")
		return
	}

	h.respondJSON(w, http.StatusOK, userInfo(user))
}

// DeleteUserHandler удаляет аккаунт; свой аккаунт удалить нельзя
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, ok := parseIDParam(r, "userId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid userId")
		return
	}
	if userID == principal.UserID {
		h.respondError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.Store.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("delete user", "userId", userID, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	h.Log.Info("user deleted", "userId", userID, "by", principal.UserID)
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
