package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeDigitalProductNotFound = "DIGITAL_PRODUCT_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeEmptyOrder             = "EMPTY_ORDER"
	ErrCodeInvalidTransition      = "INVALID_STATUS_TRANSITION"
	ErrCodeDownloadDenied         = "DOWNLOAD_DENIED"
	ErrCodeNotPurchased           = "NOT_PURCHASED"
	ErrCodeEmailTaken             = "EMAIL_TAKEN"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for a rejected input field.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// Common domain errors
var (
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDigitalProductNotFound = NewDomainError(ErrCodeDigitalProductNotFound, "Digital product not found")
	ErrUserNotFound           = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyOrder             = NewDomainError(ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrInvalidTransition      = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not allowed")
	ErrDownloadDenied         = NewDomainError(ErrCodeDownloadDenied, "Download is not permitted for this user")
	ErrNotPurchased           = NewDomainError(ErrCodeNotPurchased, "Product has not been purchased")
	ErrEmailTaken             = NewDomainError(ErrCodeEmailTaken, "Email address is already registered")
	ErrForbidden              = NewDomainError(ErrCodeForbidden, "Access to this resource is forbidden")
)
