package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/storage"
	"go.uber.org/zap"
)

// DocumentService handles customer document uploads for quotes. Blobs live
// in object storage; metadata rows tie them to the quote.
type DocumentService struct {
	docRepo   *repository.QuoteDocumentRepository
	quoteRepo repository.QuoteStore
	storage   storage.Storage
	auditSvc  *AuditLogService
	logger    *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo *repository.QuoteDocumentRepository,
	quoteRepo repository.QuoteStore,
	storage storage.Storage,
	auditSvc *AuditLogService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		quoteRepo: quoteRepo,
		storage:   storage,
		auditSvc:  auditSvc,
		logger:    logger,
	}
}

// Upload stores a document and attaches it to a quote
func (s *DocumentService) Upload(ctx context.Context, quoteID uuid.UUID, filename, contentType string, data io.Reader, actor Actor) (*domain.QuoteDocument, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	blobPath, size, err := s.storage.Upload(ctx, quote.ID, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc := &domain.QuoteDocument{
		QuoteID:     quote.ID,
		FileName:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		BlobPath:    blobPath,
		UploadedBy:  actor.ID,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// Best effort cleanup of the orphaned blob
		if delErr := s.storage.Delete(ctx, blobPath); delErr != nil {
			s.logger.Warn("failed to cleanup blob after DB error",
				zap.Error(delErr),
				zap.String("blob_path", blobPath),
			)
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if err := s.auditSvc.Append(ctx, quote.ID, domain.AuditActionDocsUploaded,
		fmt.Sprintf("Document '%s' uploaded", filename), actor); err != nil {
		s.logger.Warn("audit entry lost for document upload",
			zap.String("quote_id", quote.ID.String()))
	}

	return doc, nil
}

// ListForQuote returns the documents attached to a quote
func (s *DocumentService) ListForQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteDocument, error) {
	return s.docRepo.ListByQuote(ctx, quoteID)
}

// Download retrieves a document's content.
// Returns: reader, filename, content-type, error.
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", "", ErrNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, doc.BlobPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download document: %w", err)
	}

	return reader, doc.FileName, doc.ContentType, nil
}
