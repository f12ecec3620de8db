package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/coach-crm/internal/infra/http/middleware"
	"github.com/xavierca1/coach-crm/internal/usecase"
)

type ErrorResponse struct {
	Error     string                   `json:"error"`
	Code      string                   `json:"code,omitempty"`
	Fields    usecase.ValidationErrors `json:"fields,omitempty"`
	Retryable bool                     `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps use case errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fields, ok := usecase.AsValidationErrors(err); ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
		return
	}

	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusBadRequest
		switch de.Code {
		case usecase.CodeForbidden:
			status = http.StatusForbidden
		case usecase.CodeLeadNotFound, usecase.CodeUserNotFound, usecase.CodeNotFound:
			status = http.StatusNotFound
		}
		writeJSON(w, status, ErrorResponse{Error: de.Message, Code: de.Code})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		status := http.StatusInternalServerError
		switch {
		case te.Code == usecase.CodeStaleDiscarded:
			status = http.StatusConflict
		case te.Retryable:
			status = http.StatusServiceUnavailable
		}
		if status != http.StatusConflict {
			logrus.WithError(err).WithField("path", r.URL.Path).Error("❌ Request failed")
		}
		writeJSON(w, status, ErrorResponse{Error: te.Message, Code: te.Code, Retryable: te.Retryable})
		return
	}

	logrus.WithError(err).WithField("path", r.URL.Path).Error("❌ Unexpected error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func actorOf(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	return actor, ok
}
