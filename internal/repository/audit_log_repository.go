package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// AuditLogFilter represents filter options for querying audit logs
type AuditLogFilter struct {
	UserID    string
	Action    *domain.AuditAction
	QuoteID   *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
}

// AuditLogRepository handles audit log data access. Entries are write-once:
// nothing in the system updates or deletes them.
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts a new audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch inserts multiple audit log entries efficiently
func (r *AuditLogRepository) CreateBatch(ctx context.Context, entries []*domain.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// ListByQuote retrieves the audit trail for a quote, newest first
func (r *AuditLogRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID, limit int) ([]domain.AuditLogEntry, error) {
	var entries []domain.AuditLogEntry
	query := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditLogRepository) List(ctx context.Context, filter *AuditLogFilter, page, pageSize int) ([]domain.AuditLogEntry, int64, error) {
	var entries []domain.AuditLogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.AuditLogEntry{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("timestamp DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error

	return entries, total, err
}

// CountByAction counts audit logs grouped by action within a time range
func (r *AuditLogRepository) CountByAction(ctx context.Context, start, end time.Time) (map[domain.AuditAction]int64, error) {
	type result struct {
		Action domain.AuditAction
		Count  int64
	}

	var results []result
	err := r.db.WithContext(ctx).Model(&domain.AuditLogEntry{}).
		Select("action, COUNT(*) as count").
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Group("action").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.AuditAction]int64)
	for _, row := range results {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

// applyFilters applies optional filters to the query
func (r *AuditLogRepository) applyFilters(query *gorm.DB, filter *AuditLogFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}

	if filter.QuoteID != nil {
		query = query.Where("quote_id = ?", *filter.QuoteID)
	}

	if filter.StartTime != nil {
		query = query.Where("timestamp >= ?", *filter.StartTime)
	}

	if filter.EndTime != nil {
		query = query.Where("timestamp <= ?", *filter.EndTime)
	}

	return query
}
