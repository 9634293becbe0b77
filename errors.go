package authoring

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeSubmission ErrorType = "submission"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	ErrCodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	ErrCodeRequiredSubField     = "REQUIRED_SUBFIELD_MISSING"
	ErrCodeItemNameMissing      = "ITEM_NAME_MISSING"
	ErrCodeInvalidValue         = "INVALID_VALUE"
	ErrCodeSchemaInvalid        = "SCHEMA_INVALID"
	ErrCodeUploadFailed         = "UPLOAD_FAILED"
	ErrCodeSubmissionRejected   = "SUBMISSION_REJECTED"
	ErrCodeSubmissionTransport  = "SUBMISSION_TRANSPORT"
	ErrCodeSubmitInFlight       = "SUBMIT_IN_FLIGHT"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeAttributeNotFound    = "ATTRIBUTE_NOT_FOUND"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// AuthoringError is the unified error for the authoring engine. Every failure
// is recoverable: the session is left in a retryable state.
type AuthoringError struct {
	Type        ErrorType      `json:"type"`
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	AttributeID int64          `json:"attribute_id,omitempty"`
	Field       string         `json:"field,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Cause       error          `json:"-"`
}

func (e *AuthoringError) Error() string {
	switch {
	case e.AttributeID != 0 && e.Field != "":
		return fmt.Sprintf("[%s:%s] attribute %d field '%s': %s", e.Type, e.Code, e.AttributeID, e.Field, e.Message)
	case e.AttributeID != 0:
		return fmt.Sprintf("[%s:%s] attribute %d: %s", e.Type, e.Code, e.AttributeID, e.Message)
	case e.Field != "":
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	default:
		return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	}
}

func (e *AuthoringError) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error.
func (e *AuthoringError) WithCause(cause error) *AuthoringError {
	e.Cause = cause
	return e
}

// WithField attaches field context.
func (e *AuthoringError) WithField(field string) *AuthoringError {
	e.Field = field
	return e
}

// WithAttribute attaches the attribute the error refers to.
func (e *AuthoringError) WithAttribute(attrID int64) *AuthoringError {
	e.AttributeID = attrID
	return e
}

// WithDetail adds a single detail entry.
func (e *AuthoringError) WithDetail(key string, value any) *AuthoringError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewAuthoringError creates a new AuthoringError.
func NewAuthoringError(errorType ErrorType, code, message string) *AuthoringError {
	return &AuthoringError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a field-level validation error.
func NewValidationError(attrID int64, field, message string) *AuthoringError {
	return &AuthoringError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeRequiredFieldMissing,
		Message:     message,
		AttributeID: attrID,
		Field:       field,
	}
}

// NewUploadError creates an upload error bound to one sub-field of one
// record; the previous value for the sub-field is retained by the editor.
func NewUploadError(attrID int64, field string, cause error) *AuthoringError {
	return &AuthoringError{
		Type:        ErrorTypeUpload,
		Code:        ErrCodeUploadFailed,
		Message:     "file upload failed",
		AttributeID: attrID,
		Field:       field,
		Cause:       cause,
	}
}

// NewSubmissionError creates a remote submission error. The value map is
// preserved so the author can retry without re-entering data.
func NewSubmissionError(message string, cause error) *AuthoringError {
	return &AuthoringError{
		Type:    ErrorTypeSubmission,
		Code:    ErrCodeSubmissionRejected,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(message string, cause error) *AuthoringError {
	return &AuthoringError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// IsValidationError reports whether err is a validation-level failure.
func IsValidationError(err error) bool {
	var ae *AuthoringError
	if errors.As(err, &ae) {
		return ae.Type == ErrorTypeValidation
	}
	var ve *ValidationErrors
	return errors.As(err, &ve)
}

// IsUploadError reports whether err is an upload failure.
func IsUploadError(err error) bool {
	var ae *AuthoringError
	return errors.As(err, &ae) && ae.Type == ErrorTypeUpload
}

// IsSubmissionError reports whether err is a remote submission failure.
func IsSubmissionError(err error) bool {
	var ae *AuthoringError
	return errors.As(err, &ae) && ae.Type == ErrorTypeSubmission
}

// ValidationErrors aggregates per-field validation failures for inline
// reporting.
type ValidationErrors struct {
	Errors []*AuthoringError `json:"errors"`
}

// NewValidationErrors creates an empty collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*AuthoringError, 0)}
}

func (ve *ValidationErrors) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return ve.Errors[0].Error()
	default:
		return fmt.Sprintf("multiple validation errors: %d errors found", len(ve.Errors))
	}
}

// Add appends an error to the collection.
func (ve *ValidationErrors) Add(err *AuthoringError) {
	ve.Errors = append(ve.Errors, err)
}

// HasErrors reports whether any error was collected.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToError returns the collection as an error, or nil when empty.
func (ve *ValidationErrors) ToError() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ByAttribute groups the collected errors by attribute id. Item-level errors
// group under id 0.
func (ve *ValidationErrors) ByAttribute() map[int64][]*AuthoringError {
	out := make(map[int64][]*AuthoringError)
	for _, err := range ve.Errors {
		out[err.AttributeID] = append(out[err.AttributeID], err)
	}
	return out
}
