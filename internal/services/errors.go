package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service that the caller can act on
// wraps exactly one of these.
var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrUnavailable    = errors.New("service unavailable")
)

// DomainError carries a kind, a human-readable message and the offending identifiers.
type DomainError struct {
	Kind    error
	Message string
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func notFound(entity string, id interface{}) error {
	return &DomainError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s with id %v not found", entity, id),
		Details: map[string]interface{}{"entity": entity, "id": id},
	}
}

func notFoundBy(entity, field string, value interface{}) error {
	return &DomainError{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s with %s %v not found", entity, field, value),
		Details: map[string]interface{}{"entity": entity, field: value},
	}
}

func alreadyExists(entity, field string, value interface{}) error {
	return &DomainError{
		Kind:    ErrAlreadyExists,
		Message: fmt.Sprintf("%s with %s %v already exists", entity, field, value),
		Details: map[string]interface{}{"entity": entity, field: value},
	}
}

func validationError(message string, details map[string]interface{}) error {
	return &DomainError{Kind: ErrValidation, Message: message, Details: details}
}

func authenticationError(message string) error {
	return &DomainError{Kind: ErrAuthentication, Message: message}
}

// lookupError translates a repository lookup failure.
func lookupError(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("failed to find %s: %w", entity, err)
}

// DetailsOf returns the structured details of a domain error, if any.
func DetailsOf(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}
