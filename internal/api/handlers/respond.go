package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/internal/controller"
	"github.com/draeangela/industry-data-visualizer/internal/views"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondFailure maps err to a status code. fallback is used for errors
// that carry no type, e.g. 400 for rejected commands or 500 elsewhere.
func respondFailure(w http.ResponseWriter, log *logger.Logger, err error, fallback int) {
	status := statusFor(err, fallback)
	body := ErrorResponse{Error: err.Error()}

	var ne *contracts.NetworkError
	if errors.As(err, &ne) {
		body.UpstreamStatus = ne.StatusCode
		body.UpstreamBody = ne.Body
	}

	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	respondJSON(w, status, body)
}

func statusFor(err error, fallback int) int {
	switch {
	case contracts.IsNetworkError(err), contracts.IsDataShapeError(err):
		return http.StatusBadGateway
	case errors.Is(err, controller.ErrSessionNotFound),
		errors.Is(err, controller.ErrSessionClosed),
		errors.Is(err, views.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, controller.ErrNoDraft):
		return http.StatusConflict
	case errors.Is(err, controller.ErrSeriesNotSelected),
		errors.Is(err, controller.ErrNotIndustry):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
