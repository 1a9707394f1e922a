package livehttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/scoremaster/scoremaster-desktop/internal/scorepad"
	"github.com/scoremaster/scoremaster-desktop/internal/scoring"
)

// Error types reported in APIError.Type.
const (
	ErrTypeValidation   = "validation_error"
	ErrTypeInvalidJSON  = "invalid_json"
	ErrTypeNotFound     = "not_found"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeInternal     = "internal_error"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (e APIError) Error() string { return e.Message }

var validationErrors = []error{
	scorepad.ErrUnknownVariant,
	scorepad.ErrPlayerCount,
	scorepad.ErrNoWinner,
	scorepad.ErrRejected,
	scoring.ErrInputMismatch,
	scoring.ErrUnknownPlayer,
	scoring.ErrInvalidCategory,
	scoring.ErrCategoryFilled,
	scoring.ErrInvalidValue,
	scoring.ErrNegativePoints,
	scoring.ErrEmptyRound,
	scoring.ErrTrickCount,
	scoring.ErrInvalidTricks,
	scoring.ErrForcedMustPlay,
}

// classify maps a domain error to a status code and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, scorepad.ErrGameNotFound), errors.Is(err, scorepad.ErrRoundNotFound):
		return http.StatusNotFound, ErrTypeNotFound
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, ErrTypeValidation
		}
	}
	return http.StatusInternalServerError, ErrTypeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	writeJSON(w, status, APIError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeDomainError reports an error returned by the score pad.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("request_id=%s path=%s error=%v", middleware.GetReqID(r.Context()), r.URL.Path, err)
	}
	writeError(w, r, status, errType, err.Error())
}
