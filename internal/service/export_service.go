package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// ExportService produces CSV extracts of the quote book for reporting.
// Field quoting and escaping are delegated to encoding/csv, so customer
// names containing commas or quotes survive the round trip.
type ExportService struct {
	quoteRepo repository.QuoteStore
	auditSvc  *AuditLogService
	logger    *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(quoteRepo repository.QuoteStore, auditSvc *AuditLogService, logger *zap.Logger) *ExportService {
	return &ExportService{
		quoteRepo: quoteRepo,
		auditSvc:  auditSvc,
		logger:    logger,
	}
}

var exportHeader = []string{
	"quote_reference",
	"status",
	"source",
	"customer_name",
	"customer_cpr",
	"customer_phone",
	"vehicle_make",
	"vehicle_model",
	"vehicle_year",
	"insured_value",
	"provider",
	"plan_name",
	"premium",
	"discount_code",
	"agent_name",
	"created_at",
}

// ExportQuotesCSV renders the quotes matching the filter as a CSV document
// and records the export in the audit log.
func (s *ExportService) ExportQuotesCSV(ctx context.Context, filter *domain.QuoteFilter, actor Actor) ([]byte, error) {
	quotes, _, err := s.quoteRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for i := range quotes {
		q := &quotes[i]
		record := []string{
			q.QuoteReference,
			string(q.Status),
			string(q.Source),
			q.Customer.FullName(),
			q.Customer.CPR,
			q.Customer.Phone,
			q.Vehicle.Make,
			q.Vehicle.Model,
			strconv.Itoa(q.Vehicle.Year),
			strconv.FormatFloat(q.Vehicle.InsuredValue, 'f', 2, 64),
			q.Provider,
			q.PlanName,
			strconv.FormatFloat(q.Premium, 'f', 2, 64),
			q.DiscountCode,
			q.AgentName,
			q.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info("quotes exported",
		zap.Int("rows", len(quotes)),
		zap.String("actor_id", actor.ID))

	if err := s.auditSvc.AppendSystem(ctx, domain.AuditActionExport,
		fmt.Sprintf("Exported %d quotes to CSV", len(quotes)), actor); err != nil {
		s.logger.Warn("audit entry lost for export", zap.Error(err))
	}

	return buf.Bytes(), nil
}
