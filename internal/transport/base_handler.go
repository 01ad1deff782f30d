package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/valcriss/sovrane/internal"
	"github.com/valcriss/sovrane/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error envelope. Client errors log at warn,
// server errors at error.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.Logger.Log(context.Background(), level, "http error", "status", status, "message", message)

	h.WriteJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

// WriteNotFound writes the 404 a nil sentinel from a service translates to.
func (h *BaseHandler) WriteNotFound(w http.ResponseWriter, message string) {
	h.WriteError(w, http.StatusNotFound, message)
}

// HandleServiceError maps a service error onto the HTTP surface: an AppError
// carries its own status, anything else is an opaque repository failure.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
