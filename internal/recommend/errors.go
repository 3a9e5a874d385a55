// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"errors"

	"github.com/tomtom215/sommelier/internal/recommend/features"
)

// DataError reports a catalog that cannot be fitted. It is only returned at
// fit time.
type DataError = features.DataError

var (
	// ErrNotFitted is returned when recommending before any fit or load.
	ErrNotFitted = errors.New("recommendation engine not fitted")

	// ErrFitInProgress is returned when a fit is requested while another is
	// running.
	ErrFitInProgress = errors.New("fit already in progress")

	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid recommendation request")
)
