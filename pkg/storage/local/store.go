package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/boutique2v/commerce-backend/pkg/config"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// ErrInvalidObjectPath signals a key that would escape the storage root.
var ErrInvalidObjectPath = errors.New("invalid object path")

// ErrObjectNotFound signals a missing object.
var ErrObjectNotFound = errors.New("object not found")

// Store is the on-disk artifact store fronted by the static file server.
// Writes are atomic per object: content lands in a temp file and is renamed
// into place, so a concurrent overwrite is last-write-wins, never a torn file.
type Store struct {
	root          string
	publicBaseURL string
}

// New prepares the storage root and returns a store handle.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Store, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "local artifact store initialized")
	}

	return &Store{
		root:          abs,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Root returns the absolute storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Write persists data under the given object path, overwriting any previous
// content at the same path.
func (s *Store) Write(ctx context.Context, objectPath string, data []byte) error {
	abs, err := s.AbsPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp object: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing object: %w", err)
	}
	return os.Chmod(abs, 0o644)
}

// Read returns the content stored at the object path.
func (s *Store) Read(ctx context.Context, objectPath string) ([]byte, error) {
	abs, err := s.AbsPath(objectPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

// Exists reports whether an object is stored at the path.
func (s *Store) Exists(ctx context.Context, objectPath string) (bool, error) {
	abs, err := s.AbsPath(objectPath)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove deletes the object if present.
func (s *Store) Remove(ctx context.Context, objectPath string) error {
	abs, err := s.AbsPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}

// AbsPath resolves the object path under the storage root, rejecting keys
// that would escape it.
func (s *Store) AbsPath(objectPath string) (string, error) {
	cleaned, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// PublicURL returns the stable URL the static file server exposes for the
// object path.
func (s *Store) PublicURL(objectPath string) (string, error) {
	cleaned, err := cleanObjectPath(objectPath)
	if err != nil {
		return "", err
	}
	return s.publicBaseURL + "/" + cleaned, nil
}

func cleanObjectPath(objectPath string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(objectPath), "/")
	if trimmed == "" {
		return "", ErrInvalidObjectPath
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidObjectPath
	}
	return cleaned, nil
}
