package model

import "errors"

// Common errors returned by model implementations.
var (
	// ErrInvalidConfig is returned when an adapter is constructed or invoked
	// with unusable options (empty model name, missing contents, ...).
	ErrInvalidConfig = errors.New("invalid model configuration")

	// ErrInvalidResponse is returned when the service response cannot be
	// interpreted (no candidates, empty content).
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrContentBlocked is returned when the service refuses to generate
	// due to safety filters. Never retried.
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrTransientFailure is returned for temporary errors (rate limits,
	// 5xx, transport failures) once retries are exhausted.
	ErrTransientFailure = errors.New("transient generation failure")
)
