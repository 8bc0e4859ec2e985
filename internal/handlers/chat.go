package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vendoreval/db"
	"vendoreval/internal/auth"
	"vendoreval/models"
)

// chatAccess загружает пользователя и проверяет доступ к чату
func (h *Handler) chatAccess(w http.ResponseWriter, r *http.Request, principal *auth.Principal, vendorID int64) (*db.VendorWithScore, bool) {
	if principal.Role != auth.RoleDecisionMaker {
		h.respondError(w, http.StatusForbidden, "Chat is restricted to decision makers")
		return nil, false
	}

	user, err := h.Store.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "User not found")
		return nil, false
	}
	if !user.CanAccessChat {
		h.respondError(w, http.StatusForbidden, "Chat access is not enabled for this account")
		return nil, false
	}

	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.Log.Error("get settings", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to check chat availability")
		return nil, false
	}
	if !settings.ChatEnabled {
		h.respondError(w, http.StatusForbidden, "Chat is disabled")
		return nil, false
	}

	vendor, err := h.Store.GetVendor(r.Context(), vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.respondError(w, http.StatusNotFound, "Vendor not found")
			return nil, false
		}
		h.Log.Error("get vendor", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to check chat availability")
		return nil, false
	}
	if !vendor.ChatEnabled {
		h.respondError(w, http.StatusForbidden, "Chat is disabled for this vendor")
		return nil, false
	}

	return vendor, true
}

// GetChatMessagesHandler возвращает историю чата по поставщику
func (h *Handler) GetChatMessagesHandler(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := h.chatAccess(w, r, principal, vendorID); !ok {
		return
	}

	messages, err := h.Store.GetChatMessages(r.Context(), vendorID)
	if err != nil {
		h.Log.Error("list chat messages", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	// Opening the history clears the unread badge.
	if err := h.Store.MarkNotificationsRead(r.Context(), principal.UserID, vendorID); err != nil {
		h.Log.Error("mark notifications read", "error", err)
	}

	h.respondJSON(w, http.StatusOK, messages)
}

// PostChatMessageHandler отправляет сообщение в чат поставщика
func (h *Handler) PostChatMessageHandler(w http.ResponseWriter, r *http.Request) {
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
	if _, ok := h.chatAccess(w, r, principal, vendorID); !ok {
		return
	}

	var req models.ChatMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	message := &db.ChatMessage{
		VendorID:   vendorID,
		SenderID:   principal.UserID,
		SenderName: principal.Name,
		Content:    req.Content,
	}
	if err := h.Store.CreateChatMessage(r.Context(), message); err != nil {
		h.Log.Error("create chat message", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.respondJSON(w, http.StatusCreated, message)
}

// UnreadCountHandler возвращает число непрочитанных уведомлений
func (h *Handler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	count, err := h.Store.UnreadNotificationCount(r.Context(), principal.UserID)
	if err != nil {
		h.Log.Error("count notifications", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// streamEvent is the wire shape of one server-sent event payload.
type streamEvent struct {
	Type      string          `json:"type"`
	Message   *db.ChatMessage `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	Info      string          `json:"info,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ChatStreamHandler держит SSE-поток чата. Аутентификация выполняется
// внутри обработчика: EventSource не умеет ставить заголовки, поэтому
// токен приходит в query.
func (h *Handler) ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.respondError(w, http.StatusUnauthorized, "Missing authorization token")
		return
	}
	principal, err := auth.VerifyToken(token, h.Secret)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	vendorID, ok := parseIDParam(r, "vendorId")
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid vendorId")
		return
	}
	if _, ok := h.chatAccess(w, r, principal, vendorID); !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	connID := uuid.NewString()
	h.Log.Info("chat stream opened", "connId", connID, "vendorId", vendorID, "userId", principal.UserID)
	defer h.Log.Info("chat stream closed", "connId", connID, "vendorId", vendorID)

	active := true
	send := func(ev streamEvent) {
		if !active {
			return
		}
		ev.Timestamp = time.Now()
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
			active = false
			return
		}
		flusher.Flush()
	}

	send(streamEvent{Type: "connected"})

	started := time.Now()
	lastCheck := time.Now()
	lastHeartbeat := time.Now()

	messageTicker := time.NewTicker(h.Stream.MessageCheckInterval)
	defer messageTicker.Stop()
	heartbeatTicker := time.NewTicker(h.Stream.HeartbeatInterval)
	defer heartbeatTicker.Stop()
	monitorTicker := time.NewTicker(h.Stream.MessageCheckInterval)
	defer monitorTicker.Stop()

	ctx := r.Context()
	for active {
		select {
		case <-ctx.Done():
			return

		case <-messageTicker.C:
			messages, err := h.Store.GetChatMessagesAfter(ctx, vendorID, lastCheck)
			if err != nil {
				h.Log.Error("stream message check", "vendorId", vendorID, "error", err)
				send(streamEvent{Type: "error", Error: "Failed to fetch messages"})
				continue
			}
			for i := range messages {
				send(streamEvent{Type: "message", Message: &messages[i]})
			}
			if len(messages) > 0 {
				lastCheck = messages[len(messages)-1].CreatedAt
			}

		case <-heartbeatTicker.C:
			// Guard against ticker backlog after a suspended connection.
			if time.Since(lastHeartbeat) < h.Stream.HeartbeatInterval/2 {
				continue
			}
			lastHeartbeat = time.Now()
			send(streamEvent{Type: "heartbeat"})

		case <-monitorTicker.C:
			stale := time.Since(lastHeartbeat) > 3*h.Stream.HeartbeatInterval
			expired := time.Since(started) > h.Stream.ConnectionMaxAge
			if stale || expired {
				send(streamEvent{Type: "info", Info: "Connection expired, please reconnect"})
				return
			}
		}
	}
}
