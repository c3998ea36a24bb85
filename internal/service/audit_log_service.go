package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// Actor identifies who performed an audited action
type Actor struct {
	ID   string
	Name string
}

// AuditLogService records and queries the per-quote audit trail.
//
// Append returns its error so callers can decide what to do with a lost
// entry. Lifecycle operations log-and-continue (a failed audit write must
// not abort a committed status change), but the failure is always visible
// in the logs and to any caller that cares.
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Append writes one audit entry for a quote
func (s *AuditLogService) Append(ctx context.Context, quoteID uuid.UUID, action domain.AuditAction, details string, actor Actor) error {
	return s.append(ctx, &quoteID, action, details, actor)
}

// AppendSystem writes an audit entry with no quote reference, for actions
// that span the whole book such as exports.
func (s *AuditLogService) AppendSystem(ctx context.Context, action domain.AuditAction, details string, actor Actor) error {
	return s.append(ctx, nil, action, details, actor)
}

func (s *AuditLogService) append(ctx context.Context, quoteID *uuid.UUID, action domain.AuditAction, details string, actor Actor) error {
	entry := &domain.AuditLogEntry{
		QuoteID:   quoteID,
		Timestamp: time.Now().UTC(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Details:   details,
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		fields := []zap.Field{
			zap.String("action", string(action)),
			zap.Error(err),
		}
		if quoteID != nil {
			fields = append(fields, zap.String("quote_id", quoteID.String()))
		}
		s.logger.Error("failed to append audit entry", fields...)
		return err
	}
	return nil
}

// GetForQuote returns a quote's audit trail, newest first. A query failure
// is an error, never masked as an empty history.
func (s *AuditLogService) GetForQuote(ctx context.Context, quoteID uuid.UUID, limit int) ([]domain.AuditLogEntry, error) {
	return s.auditRepo.ListByQuote(ctx, quoteID, limit)
}

// AuditLogQueryParams represents query parameters for listing audit logs
type AuditLogQueryParams struct {
	UserID    string
	Action    *domain.AuditAction
	QuoteID   *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}

// List retrieves audit logs with filters
func (s *AuditLogService) List(ctx context.Context, params AuditLogQueryParams) ([]domain.AuditLogEntry, int64, error) {
	filter := &repository.AuditLogFilter{
		UserID:    params.UserID,
		Action:    params.Action,
		QuoteID:   params.QuoteID,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
	}

	return s.auditRepo.List(ctx, filter, params.Page, params.PageSize)
}

// GetStats returns audit log counts by action for a time range
func (s *AuditLogService) GetStats(ctx context.Context, start, end time.Time) (map[domain.AuditAction]int64, error) {
	return s.auditRepo.CountByAction(ctx, start, end)
}
