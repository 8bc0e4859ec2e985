package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// StreamConfig задаёт интервалы потока чата
type StreamConfig struct {
	MessageCheckInterval time.Duration
	HeartbeatInterval    time.Duration
	ConnectionMaxAge     time.Duration
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		MessageCheckInterval: time.Second,
		HeartbeatInterval:    15 * time.Second,
		ConnectionMaxAge:     2 * time.Minute,
	}
}

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store    StorageInterface
	Secret   []byte
	Log      *slog.Logger
	Validate *validator.Validate
	Stream   StreamConfig
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, secret []byte, log *slog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Secret:   secret,
		Log:      log,
		Validate: validator.New(),
		Stream:   DefaultStreamConfig(),
	}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.Log.Error("encode response", "error", err)
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// respondErrorDetails attaches per-field details to a validation error.
func (h *Handler) respondErrorDetails(w http.ResponseWriter, status int, message string, details []string) {
	h.respondJSON(w, status, map[string]interface{}{"error": message, "details": details})
}

// decode читает и декодирует тело запроса с ограничением размера
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON format")
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		var details []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				details = append(details, ve.Field()+" failed on "+ve.Tag())
			}
		}
		h.respondErrorDetails(w, http.StatusBadRequest, "Validation failed", details)
		return false
	}
	return true
}
