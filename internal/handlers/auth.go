package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"vendoreval/db"
	"vendoreval/internal/auth"
	"vendoreval/models"
)

// Первый админ создаётся регистрацией под этим адресом
const bootstrapAdminEmail = "admin@admin.com"

// RegisterHandler обрабатывает POST /api/auth/register
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		h.respondError(w, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		h.Log.Error("lookup user", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	user := &db.User{
		Email:          req.Email,
		Password:       hash,
		Name:           req.Name,
		Role:           auth.RoleContributor,
		ApprovalStatus: auth.ApprovalPending,
	}
	if req.Email == bootstrapAdminEmail {
		user.Role = auth.RoleAdmin
		user.ApprovalStatus = auth.ApprovalApproved
		user.CanAccessChat = true
		user.CanExportData = true
	}

	evaluator, err := h.Store.CreateUserWithEvaluator(r.Context(), user)
	if err != nil {
		h.Log.Error("create user", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	h.Log.Info("user registered", "email", user.Email, "role", user.Role)

	if user.ApprovalStatus != auth.ApprovalApproved {
		h.respondJSON(w, http.StatusCreated, map[string]interface{}{
			"user":    userInfo(user),
			"message": "Registration received, awaiting approval",
		})
		return
	}

	h.issueToken(w, user, evaluator.ID)
}

// LoginHandler обрабатывает POST /api/auth/login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		// Invalid email and invalid password look identical to a caller.
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.ApprovalStatus != auth.ApprovalApproved {
		h.respondError(w, http.StatusForbidden, "Account pending approval")
		return
	}

	var evaluatorID int64
	if evaluator, err := h.Store.GetEvaluatorByUserID(r.Context(), user.ID); err == nil {
		evaluatorID = evaluator.ID
	}

	h.issueToken(w, user, evaluatorID)
}

// MeHandler возвращает текущего пользователя
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.Store.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "User not found")
		return
	}
	h.respondJSON(w, http.StatusOK, userInfo(user))
}

func (h *Handler) issueToken(w http.ResponseWriter, user *db.User, evaluatorID int64) {
	token, err := auth.GenerateToken(auth.Principal{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		EvaluatorID: evaluatorID,
		Name:        user.Name,
	}, h.Secret)
	if err != nil {
		h.Log.Error("sign token", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	h.respondJSON(w, http.StatusOK, models.AuthResponse{
		Token: token,
		User:  userInfo(user),
		Until: time.Now().Add(auth.TokenTTL),
	})
}

func userInfo(u *db.User) models.UserInfo {
	return models.UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role,
		ApprovalStatus: u.ApprovalStatus,
		CanAccessChat:  u.CanAccessChat,
		CanExportData:  u.CanExportData,
	}
}
