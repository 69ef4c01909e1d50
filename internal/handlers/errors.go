package handlers

import (
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: business error",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithPayload(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

// handleFailure answers in the {success:false, message} shape. Errors that
// carry no business code become 400.
func handleFailure(w http.ResponseWriter, err error) {
	statusCode := http.StatusBadRequest
	message := err.Error()
	if businessErr, ok := service.AsBusinessError(err); ok {
		statusCode = mapBusinessErrorToHTTP(businessErr.Code)
		message = businessErr.Message
	}

	logger.Warn("HTTP: request failed",
		zap.Error(err),
		zap.Int("http_status", statusCode))

	responseWithFailure(w, statusCode, message)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodePermissionDenied:
		return http.StatusForbidden
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized
	case service.CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case service.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}
