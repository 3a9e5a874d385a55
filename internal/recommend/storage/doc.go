// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package storage persists fitted feature spaces together with the catalog
// snapshot they were fitted on.
//
// # Overview
//
// An Artifact is one self-contained blob: the serializable feature space
// state and the wine records in row order. Loading an artifact is enough to
// serve recommendations without the original catalog source.
//
// The store provides:
//   - Gob serialization of the artifact
//   - Gzip compression
//   - SHA-256 checksums over the uncompressed payload
//   - Monotonic versions per artifact name
//   - Pruning of old versions
//
// # Storage Format
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (Metadata)
//	  - CompressedData (gzip-compressed gob-encoded Artifact)
//
// Files are written to a temporary name and renamed into place, so a reader
// never observes a partially written version.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/artifacts")
//	if err != nil {
//	    return err
//	}
//
//	meta, err := store.Save(ctx, "catalog", storage.NewArtifact(space, wines))
//
//	artifact, meta, err := store.Load(ctx, "catalog", 0) // 0 = latest
//	var artErr *storage.ArtifactError
//	if errors.As(err, &artErr) {
//	    // missing, unreadable, checksum mismatch or misaligned
//	}
//
// # Errors
//
// Every Load failure is an *ArtifactError. Use errors.Is with
// ErrArtifactNotFound, ErrChecksumMismatch or ErrMisaligned to tell the cases
// apart.
//
// # Thread Safety
//
// All store operations are safe for concurrent use. Saves are serialized;
// loads run concurrently.
package storage
