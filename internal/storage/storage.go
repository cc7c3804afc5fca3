package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for object paths that are empty or leave the
// store's base directory.
var ErrInvalidPath = errors.New("invalid image path")

// ImageStore provides file-based storage for uploaded images.
type ImageStore struct {
	basePath string
	baseURL  string
}

// NewImageStore creates a new ImageStore and ensures the base directory exists.
// baseURL is the public address the server is reachable at.
func NewImageStore(basePath, baseURL string) (*ImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ImageStore{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// ObjectName builds a unique object path such as "chatImages/<owner>_<uuid>.png".
func ObjectName(folder, owner, ext string) string {
	name := owner + "_" + uuid.NewString()
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return path.Join(folder, name)
}

// clean turns an object path into a slash-separated path relative to the
// base directory.
func clean(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || !filepath.IsLocal(filepath.FromSlash(p)) {
		return "", ErrInvalidPath
	}
	return p, nil
}

func (s *ImageStore) resolve(p string) (string, string, error) {
	rel, err := clean(p)
	if err != nil {
		return "", "", err
	}
	return rel, filepath.Join(s.basePath, filepath.FromSlash(rel)), nil
}

// Save writes r under p and returns the cleaned object path.
func (s *ImageStore) Save(p string, r io.Reader) (string, error) {
	rel, full, err := s.resolve(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store image file: %w", err)
	}
	return rel, nil
}

// Open returns a reader for the object at p.
func (s *ImageStore) Open(p string) (*os.File, error) {
	_, full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", p, err)
	}
	return f, nil
}

// Exists checks if an object exists.
func (s *ImageStore) Exists(p string) bool {
	_, full, err := s.resolve(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// Delete removes the object at p. Deleting a missing object is not an error.
func (s *ImageStore) Delete(p string) error {
	_, full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", p, err)
	}
	return nil
}

// URL returns the public address of an object.
func (s *ImageStore) URL(p string) string {
	rel, err := clean(p)
	if err != nil {
		return ""
	}
	return s.baseURL + "/images/" + rel
}

// Root is the directory objects are stored under.
func (s *ImageStore) Root() string {
	return s.basePath
}
