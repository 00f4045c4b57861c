package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"doorstep/internal/booking"
	"doorstep/internal/cart"
	"doorstep/internal/pricing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

var (
	ErrRateLimited    = errors.New("too many requests, try again later")
	ErrOTPNotVerified = errors.New("phone number is not verified")
)

// httpError carries a status and a client-safe message.
type httpError struct {
	status int
	msg    string
	fields map[string]string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &httpError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &httpError{status: http.StatusNotFound, msg: fmt.Sprintf(format, args...)}
}

func invalidFields(err error) error {
	return &httpError{
		status: http.StatusBadRequest,
		msg:    "validation failed",
		fields: booking.FieldErrors(err),
	}
}

// upstreamError marks a failure of the external lead API.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Debug("Request rejected", fields...)
	}

	writeJSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var (
		he       *httpError
		cityErr  *pricing.InvalidCityError
		vehErr   *pricing.InvalidVehicleTypeError
		upstream *upstreamError
	)

	switch {
	case errors.As(err, &he):
		return he.status, errorResponse{Error: he.msg, Fields: he.fields}
	case errors.As(err, &cityErr), errors.As(err, &vehErr):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, cart.ErrIncomplete):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, cart.ErrSessionNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, ErrOTPNotVerified):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, booking.ErrStepLocked):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: err.Error()}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, errorResponse{Error: "lead service unavailable"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}
