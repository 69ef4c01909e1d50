package service

import (
	"errors"
	"fmt"
)

const (
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id any) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %v not found", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewConflict(resource string, id any) *BusinessError {
	return NewBusinessError(CodeConflict,
		fmt.Sprintf("%s %v already exists", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewPermissionDenied(message string) *BusinessError {
	return NewBusinessError(CodePermissionDenied, message)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("invalid value for field '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewUnauthenticated(message string) *BusinessError {
	return NewBusinessError(CodeUnauthenticated, message)
}

// AsBusinessError unwraps err to a *BusinessError if it carries one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}

// HasCode reports whether err is a BusinessError with the given code.
func HasCode(err error, code string) bool {
	busErr, ok := AsBusinessError(err)
	return ok && busErr.Code == code
}
