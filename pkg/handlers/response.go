package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/models"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteResult maps a structured operation result onto its HTTP status.
func WriteResult(w http.ResponseWriter, res models.Result) error {
	return WriteJSON(w, res.HTTPStatus(), res)
}

// WriteError translates sentinel errors to their HTTP status.
func WriteError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return ErrorResponse(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrAmbiguousEntity):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "ambiguous_entity", err.Error())
	case errors.Is(err, apperrors.ErrExternalService):
		return ErrorResponse(w, http.StatusBadGateway, "external_service", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
