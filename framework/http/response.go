package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/km-arc/go-container/framework/container"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with Laravel-style helpers.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// ── JSON responses ────────────────────────────────────────────────────────────

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

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	msg := first(message, "Not found.")
	res.JSON(http.StatusNotFound, envelope{"message": msg})
}

// MethodNotAllowed sends 405.
func (res *Response) MethodNotAllowed(message ...string) {
	msg := first(message, "Method not allowed.")
	res.JSON(http.StatusMethodNotAllowed, envelope{"message": msg})
}

// ServerError sends 500.
func (res *Response) ServerError(message ...string) {
	msg := first(message, "Server Error.")
	res.JSON(http.StatusInternalServerError, envelope{"message": msg})
}

// ResolutionError sends 500 for a failed container resolution. With debug
// set the body also names the failure kind and carries the error text.
//
//	ctrl, err := container.Resolve[*PhotoController](app, "PhotoController")
//	if err != nil {
//	    res.ResolutionError(err, cfg.App.Debug)
//	    return
//	}
func (res *Response) ResolutionError(err error, debug bool) {
	body := envelope{"message": "Server Error."}
	if debug {
		body["error"] = ResolutionErrorKind(err)
		body["exception"] = err.Error()
	}
	res.JSON(http.StatusInternalServerError, body)
}

// ResolutionErrorKind returns a short, stable name for a container error.
func ResolutionErrorKind(err error) string {
	switch {
	case errors.Is(err, container.ErrUnresolvableParameter):
		return "unresolvable_parameter"
	case errors.Is(err, container.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, container.ErrNotInstantiable):
		return "not_instantiable"
	case errors.Is(err, container.ErrCircularDependency):
		return "circular_dependency"
	case errors.Is(err, container.ErrArgumentType):
		return "argument_type"
	case errors.Is(err, container.ErrNotInitialized):
		return "not_initialized"
	default:
		return "internal"
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
