package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// FieldMessage is one entry of a field-level validation failure.
type FieldMessage struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error          string         `json:"error,omitempty"`
	Code           string         `json:"code,omitempty"`
	Details        string         `json:"details,omitempty"`
	ErrorsMessages []FieldMessage `json:"errorsMessages,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Field   string
	Fields  []FieldMessage
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError is a validation error tied to one input field.
func NewFieldValidationError(field, message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewFieldsValidationError reports several invalid fields at once.
func NewFieldsValidationError(fields []FieldMessage) *AppError {
	msg := "invalid input"
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &AppError{
		Code:    CodeValidation,
		Message: msg,
		Fields:  fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			response.ErrorsMessages = appErr.Fields
			return c.Status(status).JSON(response)
		}
		if appErr.Field != "" {
			response.ErrorsMessages = []FieldMessage{{Message: appErr.Message, Field: appErr.Field}}
			return c.Status(status).JSON(response)
		}
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
