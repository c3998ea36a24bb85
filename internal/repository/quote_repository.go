package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// QuoteStore is the persistence contract the services and the cache
// decorator both satisfy.
type QuoteStore interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
	GetAll(ctx context.Context) ([]domain.Quote, error)
	List(ctx context.Context, filter *domain.QuoteFilter) ([]domain.Quote, int64, error)
	Update(ctx context.Context, quote *domain.Quote) error
	GetPool(ctx context.Context, statuses []domain.AssignmentStatus) ([]domain.Quote, error)
	GetByAgent(ctx context.Context, agentID string) ([]domain.Quote, error)
}

// QuoteRepository handles quote data access against the primary database
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote. The version starts at 1.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	if quote.Version == 0 {
		quote.Version = 1
	}
	quote.SyncAssignmentStatus()
	return r.db.WithContext(ctx).Create(quote).Error
}

// GetByID retrieves a quote by ID. A missing quote is gorm.ErrRecordNotFound.
func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetAll returns every quote ordered by creation time, newest first
func (r *QuoteRepository) GetAll(ctx context.Context) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&quotes).Error
	return quotes, err
}

// List retrieves quotes with optional filters, newest first
func (r *QuoteRepository) List(ctx context.Context, filter *domain.QuoteFilter) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter))
	if filter != nil {
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	err := query.Find(&quotes).Error
	return quotes, total, err
}

// Update writes the quote with an optimistic concurrency check: the row is
// only written when the stored version matches the version the caller read.
// Zero rows affected means another writer got there first.
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	readVersion := quote.Version
	quote.Version = readVersion + 1
	quote.UpdatedAt = time.Now().UTC()
	quote.SyncAssignmentStatus()

	result := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ? AND version = ?", quote.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(quote)
	if result.Error != nil {
		quote.Version = readVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		quote.Version = readVersion
		// Distinguish a missing row from a version mismatch.
		var exists int64
		if err := r.db.WithContext(ctx).Model(&domain.Quote{}).
			Where("id = ?", quote.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

// GetPool returns quotes whose assignment is in one of the given states,
// oldest assignment first so the most urgent work sorts to the top.
func (r *QuoteRepository) GetPool(ctx context.Context, statuses []domain.AssignmentStatus) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("assignment_status IN ?", statuses).
		Order("created_at ASC").
		Find(&quotes).Error
	return quotes, err
}

// GetByAgent returns quotes currently assigned to the given agent whose
// assignment has not reached a terminal state.
func (r *QuoteRepository) GetByAgent(ctx context.Context, agentID string) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Where("assignment_status IN ?", []domain.AssignmentStatus{
			domain.AssignmentStatusAssigned, domain.AssignmentStatusClaimed,
		}).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

// CountByStatus returns quote counts grouped by lifecycle status
func (r *QuoteRepository) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error) {
	type result struct {
		Status domain.QuoteStatus
		Count  int64
	}

	var results []result
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.QuoteStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// IsNotFound reports whether the error is the store's missing-record error
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// applyFilters applies optional filters to the query
func (r *QuoteRepository) applyFilters(query *gorm.DB, filter *domain.QuoteFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.AssignmentStatus != nil {
		query = query.Where("assignment_status = ?", *filter.AssignmentStatus)
	}

	if filter.AgentID != "" {
		query = query.Where("agent_id = ?", filter.AgentID)
	}

	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(quote_reference) LIKE ? OR LOWER(agent_name) LIKE ?"+
				" OR LOWER(customer->>'firstName' || ' ' || customer->>'lastName') LIKE ?"+
				" OR customer->>'cpr' LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	return query
}

// quoteSortColumns whitelists the sortable fields; anything else falls back
// to the default ordering.
var quoteSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"premium":   "premium",
}

// orderClause resolves the filter's sort field. A leading "-" reverses the
// direction; the default is newest first.
func orderClause(filter *domain.QuoteFilter) string {
	if filter == nil || filter.Sort == "" {
		return "created_at DESC"
	}

	field := filter.Sort
	direction := "ASC"
	if strings.HasPrefix(field, "-") {
		field = field[1:]
		direction = "DESC"
	}

	column, ok := quoteSortColumns[field]
	if !ok {
		return "created_at DESC"
	}
	return column + " " + direction
}
