package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// QuoteDocumentRepository handles metadata for uploaded quote documents.
// The document bytes live in blob storage; rows here only describe them.
type QuoteDocumentRepository struct {
	db *gorm.DB
}

func NewQuoteDocumentRepository(db *gorm.DB) *QuoteDocumentRepository {
	return &QuoteDocumentRepository{db: db}
}

func (r *QuoteDocumentRepository) Create(ctx context.Context, doc *domain.QuoteDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *QuoteDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDocument, error) {
	var doc domain.QuoteDocument
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *QuoteDocumentRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteDocument, error) {
	var docs []domain.QuoteDocument
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *QuoteDocumentRepository) CountByQuote(ctx context.Context, quoteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.QuoteDocument{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	return count, err
}
