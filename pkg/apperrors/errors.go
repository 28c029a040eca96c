package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAmbiguousEntity = errors.New("cannot resolve a target entity without a venue id or coordinates")
	ErrExternalService = errors.New("external service failure")
)
