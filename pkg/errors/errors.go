package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents connection, timeout and non-2xx failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a storefront asking us to slow down
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeDecode represents a JSON payload that does not match the expected shape
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeParsing represents missing HTML elements or unmatched patterns
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeCatalog represents catalog service failures
	ErrorTypeCatalog ErrorType = "catalog"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// StoreError represents an error raised while polling a storefront or
// talking to one of the pipeline collaborators
type StoreError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *StoreError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeCatalog:
		return true
	default:
		return false
	}
}

// New creates a new StoreError
func New(errType ErrorType, provider, message string, err error) *StoreError {
	return &StoreError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(provider, message string, err error) *StoreError {
	return New(ErrorTypeNetwork, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider, retryAfter string) *StoreError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewDecode creates a new decode error
func NewDecode(provider, message string, err error) *StoreError {
	return New(ErrorTypeDecode, provider, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(provider, message string, err error) *StoreError {
	return New(ErrorTypeParsing, provider, message, err)
}

// NewCatalog creates a new catalog error
func NewCatalog(message string, err error) *StoreError {
	return New(ErrorTypeCatalog, "catalog", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(provider, message string, err error) *StoreError {
	return New(ErrorTypePublisher, provider, message, err)
}

// NewCache creates a new cache error
func NewCache(provider, message string, err error) *StoreError {
	return New(ErrorTypeCache, provider, message, err)
}

// NewValidation creates a new validation error
func NewValidation(provider, message string) *StoreError {
	return New(ErrorTypeValidation, provider, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *StoreError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of the first StoreError in err's chain, or
// an empty string when there is none
func TypeOf(err error) ErrorType {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsRateLimit reports whether err carries a rate limit StoreError
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}
