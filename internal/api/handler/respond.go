package handler

import (
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const genericErrorMessage = "An unexpected error occurred."

var statusByCode = map[string]int{
	apperrors.CodeNotFound:      http.StatusNotFound,
	apperrors.CodeAlreadyExists: http.StatusConflict,
	apperrors.CodeInactive:      http.StatusForbidden,
	apperrors.CodeInvalidData:   http.StatusBadRequest,
	apperrors.CodeUnauthorized:  http.StatusUnauthorized,
	apperrors.CodeInternal:      http.StatusInternalServerError,
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError maps err to its stable code and status. Internal details never
// reach the client.
func respondError(w http.ResponseWriter, err error) {
	code := apperrors.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message, field := genericErrorMessage, ""
	var fields map[string]string
	var validationError *apperrors.ValidationError

	switch {
	case errors.Is(err, apperrors.ErrPartialWrite):
		slog.Default().Error("Integrity risk: customer records left partially written", "error", err)
		monitoring.RecordIntegrityRisk("http")
	case errors.As(err, &validationError):
		message, field, fields = validationError.Message, validationError.Field, validationError.Fields
		if len(fields) == 0 && field != "" {
			fields = map[string]string{field: message}
		}
	case code == apperrors.CodeInvalidData:
		message = err.Error()
	case code == apperrors.CodeNotFound:
		message = "Customer not found."
	case code == apperrors.CodeAlreadyExists:
		message = "A customer with this identification already exists."
	case code == apperrors.CodeInactive:
		message = "Customer account is inactive."
	case code == apperrors.CodeUnauthorized:
		message = "Authentication failed."
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
			Fields:  fields,
		},
	}
	respondJSON(w, status, resp)
}
