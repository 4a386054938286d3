package handler

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/service"
)

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// statusFor maps error kinds to HTTP status codes. Nodes owned by someone
// else are reported exactly like missing ones.
func statusFor(kind string) int {
	switch kind {
	case service.KindNotFound, service.KindPermissionDenied:
		return http.StatusNotFound
	case service.KindDuplicateName:
		return http.StatusConflict
	case service.KindInvalidMove, service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case service.KindTreeTooDeep:
		return http.StatusUnprocessableEntity
	case service.KindConversion:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err as a structured JSON error. Unclassified errors
// are logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"user_id", ctxkeys.UserID(r.Context()),
			"request_id", ctxkeys.RequestID(r.Context()),
		)
	}

	writeJSON(w, status, errorResponse{
		Error: errorDetail{Kind: kind, Message: service.MessageOf(err)},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: errorDetail{Kind: service.KindValidation, Message: message},
	})
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// optionalID treats "", "null" and "root" as the root level.
func optionalID(v string) *string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "null", "root":
		return nil
	}
	return &v
}

// sendFile writes a download or inline body.
func sendFile(w http.ResponseWriter, c *service.Content, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", c.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": c.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Data)
}
