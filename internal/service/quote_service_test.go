package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testActor = service.Actor{ID: "agent-1", Name: "Test Agent"}

func setupQuoteService(t *testing.T) (*service.QuoteService, *service.AuditLogService, *gorm.DB) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	notifySvc := service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop())
	quoteSvc := service.NewQuoteService(repository.NewQuoteRepository(db), auditSvc, notifySvc, nil, nil, "", zap.NewNop())
	return quoteSvc, auditSvc, db
}

func draftQuoteRequest() *domain.CreateQuoteRequest {
	return &domain.CreateQuoteRequest{
		Source: domain.QuoteSourceAgentPortal,
		Customer: domain.CustomerDetails{
			CPR:       "900101234",
			FirstName: "Khalid",
			LastName:  "Rahma",
			Phone:     "+97336001234",
		},
		Vehicle: domain.VehicleDetails{
			Make:         "Honda",
			Model:        "Civic",
			Year:         2023,
			InsuredValue: 9000,
		},
		Premium: 145.750,
	}
}

func TestQuoteService_Create(t *testing.T) {
	quoteSvc, auditSvc, _ := setupQuoteService(t)
	ctx := context.Background()

	quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Equal(t, int64(1), quote.Version)
	assert.True(t, strings.HasPrefix(quote.QuoteReference, "GA-"), "reference %q", quote.QuoteReference)
	assert.NotEqual(t, uuid.Nil, quote.ID)

	entries, err := auditSvc.GetForQuote(ctx, quote.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionQuoteCreated, entries[0].Action)
	assert.Equal(t, testActor.ID, entries[0].UserID)
}

func TestQuoteService_Update(t *testing.T) {
	quoteSvc, _, _ := setupQuoteService(t)
	ctx := context.Background()

	t.Run("bumps version on success", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		premium := 200.0
		updated, err := quoteSvc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: quote.Version,
		}, testActor)
		require.NoError(t, err)

		assert.Equal(t, 200.0, updated.Premium)
		assert.Equal(t, int64(2), updated.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		premium := 180.0
		_, err = quoteSvc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: quote.Version,
		}, testActor)
		require.NoError(t, err)

		// Replay with the version the first writer already consumed.
		_, err = quoteSvc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: quote.Version,
		}, testActor)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})

	t.Run("issued quotes are read-only", func(t *testing.T) {
		quote := issueQuote(t, quoteSvc, ctx)

		premium := 500.0
		_, err := quoteSvc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: quote.Version,
		}, testActor)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown quote", func(t *testing.T) {
		premium := 100.0
		_, err := quoteSvc.Update(ctx, uuid.New(), &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: 1,
		}, testActor)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestQuoteService_ApprovalInvalidation(t *testing.T) {
	quoteSvc, auditSvc, _ := setupQuoteService(t)
	ctx := context.Background()

	quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	_, err = quoteSvc.RequestException(ctx, quote.ID, "customer wants installments", testActor)
	require.NoError(t, err)

	granted, err := quoteSvc.GrantApproval(ctx, quote.ID, "ok", testActor)
	require.NoError(t, err)
	require.Equal(t, domain.QuoteStatusApprovalGranted, granted.Status)
	require.NotNil(t, granted.ApprovalHandledAt)

	t.Run("risk edit voids the approval", func(t *testing.T) {
		vehicle := granted.Vehicle
		vehicle.InsuredValue = 25000

		updated, err := quoteSvc.Update(ctx, quote.ID, &domain.UpdateQuoteRequest{
			Vehicle: &vehicle,
			Version: granted.Version,
		}, testActor)
		require.NoError(t, err)

		assert.Equal(t, domain.QuoteStatusDraft, updated.Status)
		assert.Nil(t, updated.ApprovalHandledAt)

		entries, err := auditSvc.GetForQuote(ctx, quote.ID, 20)
		require.NoError(t, err)
		actions := make([]domain.AuditAction, 0, len(entries))
		for _, e := range entries {
			actions = append(actions, e.Action)
		}
		assert.Contains(t, actions, domain.AuditActionApprovalVoided)
	})

	t.Run("non-risk edit keeps the approval", func(t *testing.T) {
		fresh, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)
		_, err = quoteSvc.RequestException(ctx, fresh.ID, "", testActor)
		require.NoError(t, err)
		granted, err := quoteSvc.GrantApproval(ctx, fresh.ID, "", testActor)
		require.NoError(t, err)

		premium := 300.0
		updated, err := quoteSvc.Update(ctx, fresh.ID, &domain.UpdateQuoteRequest{
			Premium: &premium,
			Version: granted.Version,
		}, testActor)
		require.NoError(t, err)

		assert.Equal(t, domain.QuoteStatusApprovalGranted, updated.Status)
		assert.NotNil(t, updated.ApprovalHandledAt)
	})
}

func TestQuoteService_Lifecycle(t *testing.T) {
	quoteSvc, auditSvc, _ := setupQuoteService(t)
	ctx := context.Background()

	t.Run("full payment link flow", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		linked, err := quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
			SelectedPlanID: "plan-gold",
			Provider:       "Bahrain National",
			PlanName:       "Gold Comprehensive",
			Premium:        190,
		}, testActor)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusLinkSent, linked.Status)
		assert.Equal(t, "Bahrain National", linked.Provider)
		assert.Equal(t, 190.0, linked.Premium)

		_, err = quoteSvc.RecordLinkClicked(ctx, quote.ID, testActor)
		require.NoError(t, err)
		_, err = quoteSvc.RecordDocsUploaded(ctx, quote.ID, testActor)
		require.NoError(t, err)
		_, err = quoteSvc.RecordPaymentStarted(ctx, quote.ID, testActor)
		require.NoError(t, err)

		issued, err := quoteSvc.ConfirmPayment(ctx, quote.ID, testActor)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusIssued, issued.Status)

		entries, err := auditSvc.GetForQuote(ctx, quote.ID, 20)
		require.NoError(t, err)
		assert.Len(t, entries, 6)
		// Newest first.
		assert.Equal(t, domain.AuditActionIssued, entries[0].Action)
	})

	t.Run("illegal transition leaves the quote untouched", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		_, err = quoteSvc.ConfirmPayment(ctx, quote.ID, testActor)
		require.ErrorIs(t, err, domain.ErrInvalidTransition)

		reloaded, err := quoteSvc.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDraft, reloaded.Status)
		assert.Equal(t, int64(1), reloaded.Version)
	})

	t.Run("rejected approval blocks the payment link", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)
		_, err = quoteSvc.RequestException(ctx, quote.ID, "", testActor)
		require.NoError(t, err)
		rejected, err := quoteSvc.RejectApproval(ctx, quote.ID, "score too low", testActor)
		require.NoError(t, err)
		require.Equal(t, domain.QuoteStatusApprovalRejected, rejected.Status)

		_, err = quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
			SelectedPlanID: "plan-silver",
			Provider:       "Bahrain National",
			PlanName:       "Silver",
		}, testActor)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestQuoteService_SendPaymentLink_Delivery(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	sender := &recordingSender{}
	quoteSvc := service.NewQuoteService(repository.NewQuoteRepository(db), auditSvc, nil,
		sender, nil, "https://pay.test/q", zap.NewNop())
	ctx := context.Background()

	t.Run("customer receives the link", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		linked, err := quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
			SelectedPlanID: "plan-basic",
			Provider:       "Gulf Takaful",
			PlanName:       "Basic",
		}, testActor)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusLinkSent, linked.Status)

		require.Len(t, sender.sent, 1)
		msg := sender.sent[0]
		assert.Equal(t, messaging.TemplatePaymentLink, msg.Template)
		assert.Equal(t, "+97336001234", msg.To)
		assert.Equal(t, "Gulf Takaful", msg.Params["provider"])
		assert.Equal(t, quote.QuoteReference, msg.Params["reference"])
		assert.Equal(t, "https://pay.test/q/"+quote.QuoteReference, msg.Params["link"])
	})

	t.Run("failed delivery leaves the quote in draft", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		sender.fail = true
		t.Cleanup(func() { sender.fail = false })

		_, err = quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
			SelectedPlanID: "plan-basic",
			Provider:       "Gulf Takaful",
			PlanName:       "Basic",
		}, testActor)
		require.Error(t, err)

		reloaded, err := quoteSvc.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDraft, reloaded.Status)
		assert.Equal(t, quote.Version, reloaded.Version)
	})

	t.Run("unusable phone number is rejected before sending", func(t *testing.T) {
		req := draftQuoteRequest()
		req.Customer.Phone = "12"
		quote, err := quoteSvc.Create(ctx, req, testActor)
		require.NoError(t, err)

		before := len(sender.sent)
		_, err = quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
			SelectedPlanID: "plan-basic",
			Provider:       "Gulf Takaful",
			PlanName:       "Basic",
		}, testActor)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
		assert.Len(t, sender.sent, before)

		reloaded, err := quoteSvc.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDraft, reloaded.Status)
	})
}

func TestQuoteService_ConfirmPayment_TracksRenewal(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	renewalRepo := repository.NewRenewalPolicyRepository(db)
	quoteSvc := service.NewQuoteService(repository.NewQuoteRepository(db), auditSvc, nil,
		nil, renewalRepo, "", zap.NewNop())
	ctx := context.Background()

	issued := issueQuote(t, quoteSvc, ctx)

	policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-"+issued.QuoteReference)
	require.NoError(t, err)
	require.NotNil(t, policy.QuoteID)
	assert.Equal(t, issued.ID, *policy.QuoteID)
	assert.Equal(t, domain.RenewalStatusPending, policy.Status)
	assert.Equal(t, "Khalid Rahma", policy.CustomerName)
	assert.Equal(t, "Gulf Takaful", policy.Provider)
	assert.WithinDuration(t, time.Now().UTC().AddDate(1, 0, 0), policy.ExpiryDate, time.Minute)
}

// issueQuote drives a fresh quote through the direct payment path to issued
func issueQuote(t *testing.T, quoteSvc *service.QuoteService, ctx context.Context) *domain.Quote {
	t.Helper()

	quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	_, err = quoteSvc.SendPaymentLink(ctx, quote.ID, &domain.SendPaymentLinkRequest{
		SelectedPlanID: "plan-basic",
		Provider:       "Gulf Takaful",
		PlanName:       "Basic",
	}, testActor)
	require.NoError(t, err)
	_, err = quoteSvc.RecordLinkClicked(ctx, quote.ID, testActor)
	require.NoError(t, err)
	_, err = quoteSvc.RecordDocsUploaded(ctx, quote.ID, testActor)
	require.NoError(t, err)
	_, err = quoteSvc.RecordPaymentStarted(ctx, quote.ID, testActor)
	require.NoError(t, err)
	issued, err := quoteSvc.ConfirmPayment(ctx, quote.ID, testActor)
	require.NoError(t, err)

	return issued
}
