package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/config"
	"go.uber.org/zap"
)

// Storage persists customer document blobs. Uploads are scoped to a quote so
// the blob layout mirrors the ownership model: quotes/<quote-id>/<blob>.
type Storage interface {
	Upload(ctx context.Context, quoteID uuid.UUID, filename string, contentType string, data io.Reader) (string, int64, error)
	Download(ctx context.Context, blobPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, blobPath string) error
}

// NewStorage selects the storage backend from configuration: the local
// filesystem for development, Azure Blob Storage otherwise.
func NewStorage(cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Mode {
	case "local":
		return NewLocalStorage(cfg.LocalBasePath)
	case "cloud", "azure":
		if cfg.CloudConnectionString == "" {
			return nil, fmt.Errorf("cloud connection string required for azure storage")
		}
		return NewAzureBlobStorage(cfg.CloudConnectionString, cfg.CloudContainer, logger)
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.Mode)
	}
}

// blobName builds the stored path for a document: the quote scopes the
// directory, a fresh UUID guarantees uniqueness, the original extension is
// kept so content sniffing has something to go on.
func blobName(quoteID uuid.UUID, filename string) string {
	return path.Join("quotes", quoteID.String(), uuid.NewString()+filepath.Ext(filename))
}

// LocalStorage stores document blobs on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a local storage rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload writes a document under the quote's directory
func (s *LocalStorage) Upload(ctx context.Context, quoteID uuid.UUID, filename string, contentType string, data io.Reader) (string, int64, error) {
	blobPath := blobName(quoteID, filename)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(blobPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, data)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return blobPath, size, nil
}

// Download opens a stored document for reading
func (s *LocalStorage) Download(ctx context.Context, blobPath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(blobPath))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", blobPath)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored document. A missing file is not an error.
func (s *LocalStorage) Delete(ctx context.Context, blobPath string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(blobPath))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
