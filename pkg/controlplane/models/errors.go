package models

import "errors"

// Common errors for catalog and housekeeping operations.
var (
	// ErrValidation wraps field validation failures.
	ErrValidation = errors.New("validation failed")

	// Tag errors
	ErrTagNotFound  = errors.New("tag not found")
	ErrDuplicateTag = errors.New("tag already exists")

	// Release profile errors
	ErrReleaseProfileNotFound = errors.New("release profile not found")

	// Auto tag errors
	ErrAutoTagNotFound      = errors.New("auto tag not found")
	ErrDuplicateAutoTag     = errors.New("auto tag already exists")
	ErrInvalidSpecification = errors.New("invalid specification")

	// Housekeeping errors
	ErrRunNotFound = errors.New("housekeeping run not found")
)
