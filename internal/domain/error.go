package domain

import "errors"

var (
	// Common domain errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownModel    = errors.New("model is not in the catalog")

	// Completion outcomes that are not transport failures
	ErrEmptyCompletion = errors.New("completion is empty after cleaning")
	ErrNoChoices       = errors.New("completion has no choices")
	ErrNoContent       = errors.New("completion choice has no content")
)
