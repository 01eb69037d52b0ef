package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/straye-as/billing-api/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrObjectNotFound is returned by Read when the named object has never been written
var ErrObjectNotFound = errors.New("storage object not found")

// Backend persists whole named documents. Each collection of records is
// stored as one document and rewritten in full on every change.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
}

// NewBackend creates the backend selected by cfg.Mode.
// db is only used (and required) in "database" mode.
func NewBackend(cfg *config.StorageConfig, db *gorm.DB, logger *zap.Logger) (Backend, error) {
	switch cfg.Mode {
	case "local", "":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database connection required for database storage")
		}
		return NewSQLStorage(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid object name %q", name)
	}
	return nil
}

// LocalStorage keeps each document as <basePath>/<name>.json
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

func (s *LocalStorage) path(name string) string {
	return filepath.Join(s.basePath, name+".json")
}

// Read returns the document bytes
func (s *LocalStorage) Read(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

// Write replaces the document. The new content is written to a temp file
// first and renamed over the old one, so readers never see a partial file.
func (s *LocalStorage) Write(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}

// Ping checks that the base directory is still there
func (s *LocalStorage) Ping(ctx context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.basePath)
	}
	return nil
}
