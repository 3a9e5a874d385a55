// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound indicates that no artifact exists for a name or version.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrChecksumMismatch indicates that the payload does not match its
	// recorded checksum.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")

	// ErrMisaligned indicates that the catalog and the feature space rows
	// do not line up.
	ErrMisaligned = errors.New("artifact catalog and feature space are misaligned")

	// ErrInvalidName indicates an artifact name that cannot be used as a
	// file name.
	ErrInvalidName = errors.New("invalid artifact name")
)

// ArtifactError reports an artifact that could not be loaded.
type ArtifactError struct {
	Name    string
	Version int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ArtifactError) Error() string {
	where := e.Name
	if e.Version > 0 {
		where = fmt.Sprintf("%s v%d", e.Name, e.Version)
	}
	if e.Cause != nil {
		return fmt.Sprintf("artifact %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("artifact %s: %s", where, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ArtifactError) Unwrap() error {
	return e.Cause
}

func newArtifactError(name string, version int, message string, cause error) *ArtifactError {
	return &ArtifactError{Name: name, Version: version, Message: message, Cause: cause}
}
