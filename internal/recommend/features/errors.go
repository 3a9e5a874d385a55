// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import "errors"

// Causes reported inside a DataError.
var (
	ErrEmptyCatalog  = errors.New("catalog is empty")
	ErrNoUsableField = errors.New("no configured field is present in any record")
	ErrDuplicateID   = errors.New("duplicate record id")
	ErrInvalidConfig = errors.New("invalid feature configuration")
)

// DataError reports a catalog that cannot be fitted. It is only returned by
// Fit, never while scoring.
type DataError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DataError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *DataError) Unwrap() error {
	return e.Cause
}

func newDataError(message string, cause error) *DataError {
	return &DataError{Message: message, Cause: cause}
}
