// Package storage persists uploaded media on local disk.
//
// Files are grouped into buckets (covers, chapters, avatars) under a
// configured media root. Writes are two-phase: bytes first land in a
// staging directory under a random name, and only after the matching
// database row commits is the file promoted (renamed) into its bucket.
// On failure the staged files are discarded, so a half-done request
// leaves no file the database knows about.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Buckets for the three kinds of media the site stores.
const (
	BucketCovers   = "covers"
	BucketChapters = "chapters"
	BucketAvatars  = "avatars"
)

const stagingDir = "staging"

// Store is a local-disk media store rooted at a single directory.
type Store struct {
	root string
}

// New creates the bucket and staging directories under root.
func New(root string) (*Store, error) {
	for _, dir := range []string{stagingDir, BucketCovers, BucketChapters, BucketAvatars} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create media dir %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the media root directory, for static file serving.
func (s *Store) Root() string {
	return s.root
}

// Stage writes data into the staging area and returns an opaque token
// identifying the staged file.
func (s *Store) Stage(data []byte) (string, error) {
	token := uuid.New().String()
	if err := os.WriteFile(s.stagingPath(token), data, 0o644); err != nil {
		return "", fmt.Errorf("stage media file: %w", err)
	}
	return token, nil
}

// StageFrom streams r into the staging area.
func (s *Store) StageFrom(r io.Reader) (string, error) {
	token := uuid.New().String()
	f, err := os.Create(s.stagingPath(token))
	if err != nil {
		return "", fmt.Errorf("stage media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("stage media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage media file: %w", err)
	}
	return token, nil
}

// Promote moves a staged file into its final bucket location and returns
// the media reference stored in the database
// ("chapters/one-piece/ch4_p001.jpg"). The name may contain slashes;
// intermediate directories are created.
func (s *Store) Promote(token, bucket, name string) (string, error) {
	ref := bucket + "/" + name
	dst := filepath.Join(s.root, bucket, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("promote media file %s: %w", ref, err)
	}
	if err := os.Rename(s.stagingPath(token), dst); err != nil {
		return "", fmt.Errorf("promote media file %s: %w", ref, err)
	}
	return ref, nil
}

// Discard removes staged files. Missing files are ignored, so it is safe
// to call in cleanup paths regardless of how far the request got.
func (s *Store) Discard(tokens ...string) {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		os.Remove(s.stagingPath(token))
	}
}

// Remove deletes a committed media file by its reference.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove media file %s: %w", ref, err)
	}
	return nil
}

func (s *Store) stagingPath(token string) string {
	return filepath.Join(s.root, stagingDir, token)
}
