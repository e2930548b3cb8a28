package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// ValidationError rejects a single request field.
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	if err.Field == "" {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.Field, err.Message)
}

func invalidField(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", err.Resource, err.ID)
}

func (err *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// notFoundOr turns a missing-row error from the store into a NotFoundError
// and wraps anything else.
func notFoundOr(err error, resource string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("%s %d: %w", resource, id, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
