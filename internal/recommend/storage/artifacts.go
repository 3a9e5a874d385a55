// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/wine"
)

// FormatVersion is the on-disk layout version written into metadata.
const FormatVersion = 1

const fileSuffix = ".gob.gz"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Metadata contains information about a stored artifact.
type Metadata struct {
	// Name is the artifact name (e.g., "catalog").
	Name string `json:"name"`

	// Version is the artifact version (monotonically increasing).
	Version int `json:"version"`

	// FormatVersion is the on-disk layout version.
	FormatVersion int `json:"format_version"`

	// FittedAt is when the feature space was fitted.
	FittedAt time.Time `json:"fitted_at"`

	// SavedAt is when the artifact was saved.
	SavedAt time.Time `json:"saved_at"`

	// Records is the number of wines in the snapshot.
	Records int `json:"records"`

	// VocabularySize is the number of terms in the text model.
	VocabularySize int `json:"vocabulary_size"`

	// Checksum is the SHA-256 checksum of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Artifact is a fitted feature space together with its catalog snapshot.
// Catalog[i] is the record of feature space row i.
type Artifact struct {
	Space   features.State
	Catalog []wine.Wine

	restored *features.Space
}

// NewArtifact captures a space and the catalog it was fitted on.
func NewArtifact(space *features.Space, catalog []wine.Wine) *Artifact {
	return &Artifact{
		Space:    space.State(),
		Catalog:  append([]wine.Wine(nil), catalog...),
		restored: space,
	}
}

// Restore rebuilds the feature space. The result is cached.
func (a *Artifact) Restore() (*features.Space, error) {
	if a.restored != nil {
		return a.restored, nil
	}
	if len(a.Catalog) != len(a.Space.IDs) {
		return nil, fmt.Errorf("%w: %d records for %d rows", ErrMisaligned, len(a.Catalog), len(a.Space.IDs))
	}
	for i := range a.Catalog {
		if a.Catalog[i].ID != a.Space.IDs[i] {
			return nil, fmt.Errorf("%w: row %d is %q, record is %q", ErrMisaligned, i, a.Space.IDs[i], a.Catalog[i].ID)
		}
	}
	space, err := features.FromState(a.Space)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMisaligned, err)
	}
	a.restored = space
	return space, nil
}

// storedFile is the on-disk format for artifact files.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages artifact persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per artifact name
	versions map[string]int
}

// NewStore creates a new artifact store at the given directory.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	all, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	for name, versions := range all {
		s.versions[name] = versions[0]
	}

	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scan lists the versions of every artifact on disk, newest first.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		name, version := parseArtifactFilename(strings.TrimSuffix(entry.Name(), fileSuffix))
		if name == "" {
			continue
		}
		found[name] = append(found[name], version)
	}
	for name := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(found[name])))
	}
	return found, nil
}

// parseArtifactFilename extracts the name and version from "catalog_v3".
func parseArtifactFilename(base string) (name string, version int) {
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	if _, err := fmt.Sscanf(base[idx+2:], "%d", &version); err != nil || version < 1 {
		return "", 0
	}
	if fmt.Sprintf("%d", version) != base[idx+2:] {
		return "", 0
	}
	return base[:idx], version
}

func validateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save stores an artifact as the next version of name.
func (s *Store) Save(ctx context.Context, name string, a *Artifact) (meta Metadata, err error) {
	defer func() { metrics.RecordArtifactOperation("save", err) }()

	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	if err := validateName(name); err != nil {
		return Metadata{}, err
	}
	if len(a.Catalog) != len(a.Space.IDs) {
		return Metadata{}, fmt.Errorf("%w: %d records for %d rows", ErrMisaligned, len(a.Catalog), len(a.Space.IDs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return Metadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return Metadata{}, fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	version := s.versions[name] + 1
	meta = Metadata{
		Name:           name,
		Version:        version,
		FormatVersion:  FormatVersion,
		FittedAt:       a.Space.FittedAt,
		SavedAt:        time.Now(),
		Records:        len(a.Catalog),
		VocabularySize: len(a.Space.Terms),
		Checksum:       hex.EncodeToString(hash[:]),
		SizeBytes:      int64(compressed.Len()),
	}

	if err := s.writeFile(s.artifactPath(name, version), storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return Metadata{}, err
	}

	s.versions[name] = version
	metrics.ArtifactSizeBytes.Set(float64(meta.SizeBytes))
	return meta, nil
}

// writeFile writes sf to a temporary file and renames it into place.
//
//nolint:gocritic // hugeParam: storedFile is written once
func (s *Store) writeFile(filename string, sf storedFile) error {
	tmp, err := os.CreateTemp(s.baseDir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create artifact file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write artifact file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact file: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("rename artifact file: %w", err)
	}
	return nil
}

// Load loads an artifact by name and version and validates it.
// If version is 0, loads the latest version. Every failure is an
// *ArtifactError.
func (s *Store) Load(ctx context.Context, name string, version int) (a *Artifact, meta *Metadata, err error) {
	defer func() { metrics.RecordArtifactOperation("load", err) }()

	if err := ctx.Err(); err != nil {
		return nil, nil, newArtifactError(name, version, "load canceled", err)
	}
	if err := validateName(name); err != nil {
		return nil, nil, newArtifactError(name, version, "load", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, nil, newArtifactError(name, 0, "no saved version", ErrArtifactNotFound)
		}
	}

	sf, err := readStoredFile(s.artifactPath(name, version))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, newArtifactError(name, version, "open", ErrArtifactNotFound)
		}
		return nil, nil, newArtifactError(name, version, "read artifact file", err)
	}

	rawData, err := decompress(sf.CompressedData)
	if err != nil {
		return nil, nil, newArtifactError(name, version, "decompress artifact", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, newArtifactError(name, version,
			fmt.Sprintf("expected %s, got %s", sf.Metadata.Checksum, checksum), ErrChecksumMismatch)
	}

	a = &Artifact{}
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(a); err != nil {
		return nil, nil, newArtifactError(name, version, "decode artifact", err)
	}
	if _, err := a.Restore(); err != nil {
		return nil, nil, newArtifactError(name, version, "restore feature space", err)
	}

	return a, &sf.Metadata, nil
}

func readStoredFile(filename string) (*storedFile, error) {
	f, err := os.Open(filename) //nolint:gosec // filename is built from a validated name
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, err
	}
	return &sf, nil
}

func decompress(data []byte) ([]byte, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable
	return io.ReadAll(gzr)
}

// LatestVersion returns the latest version number for an artifact.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// ListArtifacts returns the metadata of every stored version of name, newest
// first. An empty name lists all artifacts ordered by name. Unreadable files
// are skipped.
func (s *Store) ListArtifacts(ctx context.Context, name string) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(all))
	for n := range all {
		if name == "" || n == name {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var out []Metadata
	for _, n := range names {
		for _, v := range all[n] {
			sf, err := readStoredFile(s.artifactPath(n, v))
			if err != nil {
				continue
			}
			out = append(out, sf.Metadata)
		}
	}
	return out, nil
}

// Delete removes a specific artifact version.
func (s *Store) Delete(ctx context.Context, name string, version int) (err error) {
	defer func() { metrics.RecordArtifactOperation("delete", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.artifactPath(name, version)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s v%d: %w", name, version, ErrArtifactNotFound)
		}
		return fmt.Errorf("delete artifact: %w", err)
	}

	return s.refreshLatestLocked(name)
}

// Prune removes old versions of name, keeping the newest keepVersions.
// It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (removed int, err error) {
	defer func() { metrics.RecordArtifactOperation("prune", err) }()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keepVersions < 1 {
		keepVersions = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	versions := all[name]
	for i := keepVersions; i < len(versions); i++ {
		if err := os.Remove(s.artifactPath(name, versions[i])); err != nil {
			return removed, fmt.Errorf("remove %s v%d: %w", name, versions[i], err)
		}
		removed++
	}

	return removed, s.refreshLatestLocked(name)
}

// refreshLatestLocked recomputes the latest version of name. Must be called
// with mu held.
func (s *Store) refreshLatestLocked(name string) error {
	all, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if versions := all[name]; len(versions) > 0 {
		s.versions[name] = versions[0]
	} else {
		delete(s.versions, name)
	}
	return nil
}

// artifactPath returns the file path for an artifact version.
func (s *Store) artifactPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(Artifact{})
	gob.Register(Metadata{})
	gob.Register(storedFile{})
}
