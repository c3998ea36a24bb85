package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupExportService(t *testing.T) (*service.ExportService, *service.QuoteService) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	quoteRepo := repository.NewQuoteRepository(db)
	quoteSvc := service.NewQuoteService(quoteRepo, auditSvc, nil, nil, nil, "", zap.NewNop())
	exportSvc := service.NewExportService(quoteRepo, auditSvc, zap.NewNop())
	return exportSvc, quoteSvc
}

func TestExportService_ExportQuotesCSV(t *testing.T) {
	exportSvc, quoteSvc := setupExportService(t)
	ctx := context.Background()

	req := draftQuoteRequest()
	req.Customer.FirstName = `Abdulla, "Abu Rashid"`
	req.Customer.LastName = "Al-Mahmood"
	quote, err := quoteSvc.Create(ctx, req, testActor)
	require.NoError(t, err)

	data, err := exportSvc.ExportQuotesCSV(ctx, &domain.QuoteFilter{}, testActor)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.Equal(t, []string{
		"quote_reference", "status", "source", "customer_name", "customer_cpr",
		"customer_phone", "vehicle_make", "vehicle_model", "vehicle_year",
		"insured_value", "provider", "plan_name", "premium", "discount_code",
		"agent_name", "created_at",
	}, header)

	row := records[1]
	require.Len(t, row, len(header))
	assert.Equal(t, quote.QuoteReference, row[0])
	assert.Equal(t, "draft", row[1])
	assert.Equal(t, "agent_portal", row[2])
	// Commas and quotes in the name survive the round trip intact.
	assert.Equal(t, `Abdulla, "Abu Rashid" Al-Mahmood`, row[3])
	assert.Equal(t, "900101234", row[4])
	assert.Equal(t, "Honda", row[6])
	assert.Equal(t, "2023", row[8])
	assert.Equal(t, "9000.00", row[9])
	assert.Equal(t, "145.75", row[12])
}

func TestExportService_EmptyBook(t *testing.T) {
	exportSvc, _ := setupExportService(t)

	data, err := exportSvc.ExportQuotesCSV(context.Background(), &domain.QuoteFilter{}, testActor)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExportService_FilterByStatus(t *testing.T) {
	exportSvc, quoteSvc := setupExportService(t)
	ctx := context.Background()

	_, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)
	issueQuote(t, quoteSvc, ctx)

	issued := domain.QuoteStatusIssued
	data, err := exportSvc.ExportQuotesCSV(ctx, &domain.QuoteFilter{Status: &issued}, testActor)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "issued", records[1][1])
}
