package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-injector/framework/container"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// Unauthorized sends 401.
func (res *Response) Unauthorized(message ...string) {
	res.Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ValidationError sends 422 with one message list per field.
//
//	res.ValidationError(map[string][]string{"email": {"email is required"}})
func (res *Response) ValidationError(fields map[string][]string) {
	res.JSON(http.StatusUnprocessableEntity, envelope{
		"message": "The given data was invalid.",
		"errors":  fields,
	})
}

// InjectionFailed sends 500 describing a failed service resolution:
//
//	{"message": "Service unavailable.", "kind": "missing provider", "service": "*app.UserRepo"}
//
// The error text itself is only included when debug is true.
func (res *Response) InjectionFailed(err error, debug bool) {
	body := envelope{"message": "Service unavailable."}
	var ie *container.InjectError
	if errors.As(err, &ie) {
		body["kind"] = ie.Kind.String()
		if !ie.Service.IsZero() {
			body["service"] = ie.Service.Name()
		}
	}
	if debug {
		body["error"] = err.Error()
	}
	res.JSON(http.StatusInternalServerError, body)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
