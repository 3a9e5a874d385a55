// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package services provides suture.Service wrappers for the server's
// long-running components.
//
// HTTPServerService translates http.Server's blocking ListenAndServe into
// suture's context-aware Serve with a bounded graceful shutdown.
//
// RefreshService refits the recommendation engine from a catalog provider on
// an interval and persists each fitted feature space to the artifact store.
package services
