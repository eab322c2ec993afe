// Package fsstore keeps document artifacts as plain files in a directory:
//
//	<dir>/<doc_id>.index           binary index blob
//	<dir>/<doc_id>_metadata.json   chunk metadata
//	<sourceDir>/<doc_id>.pdf       original upload (optional)
//
// Writes go through a temp file and rename so readers never observe a
// half-written artifact.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/docvec/artifact"
)

const (
	indexSuffix    = ".index"
	metadataSuffix = "_metadata.json"
	sourceSuffix   = ".pdf"
)

// Store is a directory-backed artifact.Store.
type Store struct {
	dir       string
	sourceDir string
}

// Option configures a Store.
type Option func(*Store)

// WithSourceDir makes the store discover, save and delete original uploads
// kept in dir.
func WithSourceDir(dir string) Option {
	return func(s *Store) { s.sourceDir = dir }
}

// New creates the artifact directory (and source directory) if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("fsstore: dir is empty")
	}
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	if s.sourceDir != "" {
		if err := os.MkdirAll(s.sourceDir, 0o755); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// IndexPath returns the index artifact path of docID.
func (s *Store) IndexPath(docID string) string {
	return filepath.Join(s.dir, docID+indexSuffix)
}

// MetadataPath returns the metadata artifact path of docID.
func (s *Store) MetadataPath(docID string) string {
	return filepath.Join(s.dir, docID+metadataSuffix)
}

// SourcePath returns the original upload path of docID, or "" when sources
// are not kept.
func (s *Store) SourcePath(docID string) string {
	if s.sourceDir == "" {
		return ""
	}
	return filepath.Join(s.sourceDir, docID+sourceSuffix)
}

// Save writes the index artifact, then the metadata artifact.
func (s *Store) Save(ctx context.Context, docID string, index, metadata []byte) error {
	if err := checkID(docID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(s.IndexPath(docID), index); err != nil {
		return fmt.Errorf("fsstore: write index %s: %w", docID, err)
	}
	if err := writeFileAtomic(s.MetadataPath(docID), metadata); err != nil {
		return fmt.Errorf("fsstore: write metadata %s: %w", docID, err)
	}
	return nil
}

// SaveSource stores the original upload of docID.
func (s *Store) SaveSource(ctx context.Context, docID string, data []byte) error {
	if err := checkID(docID); err != nil {
		return err
	}
	if s.sourceDir == "" {
		return fmt.Errorf("fsstore: source dir not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(s.SourcePath(docID), data)
}

// Load reads both artifacts.
func (s *Store) Load(ctx context.Context, docID string) ([]byte, []byte, error) {
	if err := checkID(docID); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	index, err := os.ReadFile(s.IndexPath(docID))
	if err != nil {
		return nil, nil, notFound(err)
	}
	metadata, err := os.ReadFile(s.MetadataPath(docID))
	if err != nil {
		return nil, nil, notFound(err)
	}
	return index, metadata, nil
}

// Stat reports which files exist for docID.
func (s *Store) Stat(ctx context.Context, docID string) (artifact.Info, error) {
	info := artifact.Info{DocID: docID}
	if err := checkID(docID); err != nil {
		return info, err
	}
	if err := ctx.Err(); err != nil {
		return info, err
	}
	var err error
	if info.HasIndex, err = statInto(&info, s.IndexPath(docID)); err != nil {
		return info, err
	}
	if info.HasMetadata, err = statInto(&info, s.MetadataPath(docID)); err != nil {
		return info, err
	}
	if s.sourceDir != "" {
		if info.HasSource, err = statInto(&info, s.SourcePath(docID)); err != nil {
			return info, err
		}
	}
	return info, nil
}

// Delete removes every file of docID, ignoring missing ones.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := checkID(docID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	paths := []string{s.IndexPath(docID), s.MetadataPath(docID)}
	if s.sourceDir != "" {
		paths = append(paths, s.SourcePath(docID))
	}
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List scans the artifact and source directories.
func (s *Store) List(ctx context.Context) ([]artifact.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byID := map[string]*artifact.Info{}
	get := func(id string) *artifact.Info {
		if info, ok := byID[id]; ok {
			return info
		}
		info := &artifact.Info{DocID: id}
		byID[id] = info
		return info
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case strings.HasSuffix(name, metadataSuffix):
			info := get(strings.TrimSuffix(name, metadataSuffix))
			info.HasMetadata = true
			addFileInfo(info, e)
		case strings.HasSuffix(name, indexSuffix):
			info := get(strings.TrimSuffix(name, indexSuffix))
			info.HasIndex = true
			addFileInfo(info, e)
		}
	}
	if s.sourceDir != "" {
		entries, err := os.ReadDir(s.sourceDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sourceSuffix) {
				continue
			}
			info := get(strings.TrimSuffix(name, sourceSuffix))
			info.HasSource = true
			addFileInfo(info, e)
		}
	}
	out := make([]artifact.Info, 0, len(byID))
	for id, info := range byID {
		if id == "" {
			continue
		}
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}

var _ artifact.Store = (*Store)(nil)
var _ artifact.SourceSaver = (*Store)(nil)

func checkID(docID string) error {
	if docID == "" || docID == "." || docID == ".." || strings.ContainsAny(docID, `/\`) || strings.HasPrefix(docID, ".") {
		return fmt.Errorf("fsstore: invalid doc id %q", docID)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return artifact.ErrNotFound
	}
	return err
}

func statInto(info *artifact.Info, path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	info.Size += fi.Size()
	if fi.ModTime().After(info.UpdatedAt) {
		info.UpdatedAt = fi.ModTime()
	}
	return true, nil
}

func addFileInfo(info *artifact.Info, e fs.DirEntry) {
	fi, err := e.Info()
	if err != nil {
		return
	}
	info.Size += fi.Size()
	if fi.ModTime().After(info.UpdatedAt) {
		info.UpdatedAt = fi.ModTime()
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
