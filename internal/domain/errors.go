package domain

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

type AuthorizationError struct {
	Message string
	// Authenticated is true when the caller is known but not permitted.
	Authenticated bool
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

func NewForbiddenError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message, Authenticated: true}
}

// DependencyError wraps a failure of the backing store, blob store, mail
// provider or analysis service.
type DependencyError struct {
	Dependency string
	Op         string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Dependency, e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func NewDependencyError(dependency, op string, err error) *DependencyError {
	return &DependencyError{Dependency: dependency, Op: op, Err: err}
}

// Detail is the machine-readable code returned to clients.
func (e *DependencyError) Detail() string {
	return fmt.Sprintf("%s.%s", e.Dependency, e.Op)
}

type SizeLimitError struct {
	FileName string
	Size     int64
	Limit    int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, exceeds the %d byte limit", e.FileName, e.Size, e.Limit)
}

var ErrNoAnalyzableDocument = NewValidationError("documents", "no PDF document found in project")

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
