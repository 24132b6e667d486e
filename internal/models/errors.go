package models

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when an authenticated user touches a post they
	// do not own.
	ErrForbidden = errors.New("forbidden")

	ErrAuthenticationRequired = errors.New("authentication required")

	ErrUnknownUser       = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s id %d does not exist", e.Resource, e.ID)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
