package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/pkg/logger"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

// Result is the body shape of every AJAX-style endpoint.
type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// PageResult is returned by page-style writes: the outcome plus the refreshed list.
type PageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Items   any    `json:"items"`
}

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

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, Result{Success: false, Message: message})
}

// WriteSuccess writes a 200 {success:true} body.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, message, redirect string) {
	h.WriteJSON(w, http.StatusOK, Result{Success: true, Message: message, Redirect: redirect})
}

// WriteAppError renders err as {success:false}. AppErrors keep their status
// and user-facing message; anything else is a 500 with a generic message.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	status, message := StatusAndMessage(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err, "status", status)
	} else {
		h.Logger.Warn("request rejected", "error", err, "status", status)
	}
	h.WriteJSON(w, status, Result{Success: false, Message: message})
}

// WriteResult writes a page-style outcome with the refreshed items. On
// failure the status comes from err and failPrefix is put before its message.
func (h *BaseHandler) WriteResult(w http.ResponseWriter, err error, message, failPrefix string, items any) {
	if err == nil {
		h.WriteJSON(w, http.StatusOK, PageResult{Success: true, Message: message, Items: items})
		return
	}
	status, text := StatusAndMessage(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("page write failed", "error", err, "status", status)
	} else {
		h.Logger.Warn("page write rejected", "error", err, "status", status)
	}
	h.WriteJSON(w, status, PageResult{Success: false, Message: failPrefix + text, Items: items})
}

// StatusAndMessage maps an error onto its HTTP status and user-facing text.
func StatusAndMessage(err error) (int, string) {
	if appErr, ok := apperrors.IsAppError(err); ok {
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, appErr.GetDetailedMessage()
	}
	return http.StatusInternalServerError, "An unexpected error occurred. Please try again."
}

// MessageOf is the user-facing text of err.
func MessageOf(err error) string {
	_, msg := StatusAndMessage(err)
	return msg
}

var ErrInvalidBody = apperrors.NewValidationError("Invalid request body.", apperrors.ErrCodeValidationFailed)

// DecodeJSON reads at most 1MiB of JSON into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrInvalidBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidBody.WithCause(err)
		}
		return ErrInvalidBody.WithCause(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

var ErrInvalidID = apperrors.NewValidationError("Invalid id.", apperrors.ErrCodeValidationFailed)

// URLParamID parses the chi {name} parameter as a positive int64.
func URLParamID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// HandlerSwitch dispatches on a query parameter, e.g. /login?handler=UserLogin.
func HandlerSwitch(param string, handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get(param)
		if fn, ok := handlers[name]; ok {
			fn(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(Result{Success: false, Message: fmt.Sprintf("Unknown handler %q.", name)})
	}
}
