// Package archive keeps an immutable copy of every scored prediction in blob storage,
// one JSON document per prediction under <module>/<id>.json.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
)

// ErrNotFound is returned when no archived document exists for a prediction.
var ErrNotFound = errors.New("archived prediction not found")

// Store abstracts blob storage for prediction documents.
type Store interface {
	Put(ctx context.Context, module scoring.Module, id string, data []byte) error
	Get(ctx context.Context, module scoring.Module, id string) ([]byte, error)
}

// New builds the Store selected by cfg.Backend. An empty backend disables archiving
// and returns a nil Store.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "local":
		return NewLocalStorage(cfg.LocalPath), nil
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// objectKey validates the pair and returns the object name shared by every backend.
func objectKey(module scoring.Module, id string) (string, error) {
	if module == "" {
		return "", fmt.Errorf("archive key: module is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("archive key: invalid prediction id %q: %w", id, err)
	}
	return string(module) + "/" + id + ".json", nil
}

// LocalStorage implements Store using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(module scoring.Module, id string) (string, error) {
	key, err := objectKey(module, id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BaseDir, filepath.FromSlash(key)), nil
}

// Put stores a prediction document.
func (s *LocalStorage) Put(_ context.Context, module scoring.Module, id string, data []byte) error {
	path, err := s.path(module, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a prediction document.
func (s *LocalStorage) Get(_ context.Context, module scoring.Module, id string) ([]byte, error) {
	path, err := s.path(module, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, module, id)
	}
	return data, err
}
