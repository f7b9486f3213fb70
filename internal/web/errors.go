package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to get a user-facing message
//  4. Technical error is logged with the request context (request id, ip, epoch)
//  5. User message is rendered as an HTMX fragment, JSON, or an HTML page

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/logging"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/JonMunkholm/userdash/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status of err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, columns.ErrInvalidField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and returns a user-facing one in the
// format the client asked for.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	logger.ErrorContext(r.Context(), "request error",
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		s.renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		s.respondErrorHTML(w, r, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error inside the page layout.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	page := templates.Layout(s.layout("", ""), templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	_ = page.Render(r.Context(), w)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func (s *Server) renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
