package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/models"
)

const msgInternal = "Internal server error"

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Status     int    `json:"status"`
	OccurredAt string `json:"occurredAt"`
}

// StatusPolicy maps each failure kind to an HTTP status. Unclassified failures are always 500.
// HideFaultMessages replaces the message of unclassified failures with a generic text.
type StatusPolicy struct {
	Conflict          int
	NotFound          int
	Invalid           int
	HideFaultMessages bool
}

// DefaultStatusPolicy reports every domain failure as 400.
func DefaultStatusPolicy() StatusPolicy {
	return StatusPolicy{
		Conflict: http.StatusBadRequest,
		NotFound: http.StatusBadRequest,
		Invalid:  http.StatusBadRequest,
	}
}

// Translator turns failures into HTTP statuses and error bodies. It is the only place that does so.
type Translator struct {
	log    *slog.Logger
	policy StatusPolicy
	now    func() time.Time
}

// NewTranslator creates a Translator that reports failures according to policy.
func NewTranslator(log *slog.Logger, policy StatusPolicy) *Translator {
	return &Translator{log: log, policy: policy, now: time.Now}
}

// WithClock replaces the time source used for occurredAt.
func (t *Translator) WithClock(now func() time.Time) *Translator {
	t.now = now
	return t
}

// Translate maps err to a status and body. Unclassified failures keep their message
// unless the policy hides it.
func (t *Translator) Translate(err error) ErrorResponse {
	status := http.StatusInternalServerError
	message := t.faultMessage(err.Error())

	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
		switch {
		case errors.Is(domainErr, models.ErrConflict):
			status = t.policy.Conflict
		case errors.Is(domainErr, models.ErrNotFound):
			status = t.policy.NotFound
		case errors.Is(domainErr, models.ErrInvalid):
			status = t.policy.Invalid
		default:
			message = t.faultMessage(domainErr.Message)
		}
	}

	return ErrorResponse{
		Title:      http.StatusText(status),
		Message:    message,
		Status:     status,
		OccurredAt: t.now().UTC().Format(time.RFC3339),
	}
}

func (t *Translator) faultMessage(message string) string {
	if t.policy.HideFaultMessages {
		return msgInternal
	}
	return message
}

// Write translates err and sends it as a JSON response.
func (t *Translator) Write(w http.ResponseWriter, r *http.Request, err error) {
	resp := t.Translate(err)
	if resp.Status >= http.StatusInternalServerError {
		t.log.ErrorContext(r.Context(), "request failed", sl.Err(err), "path", r.URL.Path)
	}

	writeJSON(w, resp.Status, resp, t.log)
}

func writeJSON(w http.ResponseWriter, status int, body any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", sl.Err(err))
	}
}
