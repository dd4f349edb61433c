package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/classbook/internal/application"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// BuildErrorResponse maps an application error to its status and body.
// Internal failures never leak their cause to the client.
func BuildErrorResponse(err error) (int, ErrorResponse) {
	statusCode := application.ToHTTPStatus(err)
	detail := ErrorDetail{
		Code:    application.ToErrorCode(err),
		Message: err.Error(),
	}

	if svcErr, ok := application.IsServiceError(err); ok {
		detail.Message = svcErr.Message
		detail.Details = svcErr.Details
	}
	if statusCode == http.StatusInternalServerError {
		detail.Message = http.StatusText(statusCode)
	}

	return statusCode, ErrorResponse{Success: false, Error: detail}
}

// WriteError maps application errors to HTTP responses
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode, response := BuildErrorResponse(err)

	if statusCode >= http.StatusInternalServerError {
		logger.Error("request failed",
			"status", statusCode,
			"category", application.CategorizeError(err),
			"error", err,
		)
	}

	WriteJSON(w, statusCode, response)
}

func WriteData(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, DataResponse{Success: true, Data: data})
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
