package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSender captures sent messages and fails on demand
type recordingSender struct {
	sent []messaging.Message
	fail bool
}

func (r *recordingSender) Send(_ context.Context, msg messaging.Message) error {
	if r.fail {
		return errors.New("gateway timeout")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func setupRenewalService(t *testing.T) (*service.RenewalService, *repository.RenewalPolicyRepository, *recordingSender, *service.QuoteService) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	quoteRepo := repository.NewQuoteRepository(db)
	quoteSvc := service.NewQuoteService(quoteRepo, auditSvc, nil, nil, nil, "", zap.NewNop())
	renewalRepo := repository.NewRenewalPolicyRepository(db)
	sender := &recordingSender{}
	renewalSvc := service.NewRenewalService(renewalRepo, quoteSvc, sender, nil, zap.NewNop())
	return renewalSvc, renewalRepo, sender, quoteSvc
}

func createRenewalPolicy(t *testing.T, repo *repository.RenewalPolicyRepository, policyNumber string, expiresIn time.Duration) *domain.RenewalPolicy {
	t.Helper()
	policy := &domain.RenewalPolicy{
		PolicyNumber:  policyNumber,
		CustomerName:  "Amina Fakhro",
		CustomerPhone: "+97336001234",
		Provider:      "Gulf Takaful",
		PlanName:      "Comprehensive",
		Premium:       210,
		ExpiryDate:    time.Now().UTC().Add(expiresIn),
		Status:        domain.RenewalStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), policy))
	return policy
}

func TestRenewalService_Scan_Reminders(t *testing.T) {
	renewalSvc, renewalRepo, sender, _ := setupRenewalService(t)
	ctx := context.Background()

	t.Run("30 day reminder fires once", func(t *testing.T) {
		createRenewalPolicy(t, renewalRepo, "POL-30-001", 20*24*time.Hour)

		result, err := renewalSvc.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Reminders30)
		assert.Equal(t, 0, result.SendFailures)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, messaging.TemplateRenewalReminder30, sender.sent[0].Template)
		assert.Equal(t, "+97336001234", sender.sent[0].To)

		policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-30-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RenewalStatusReminder30Sent, policy.Status)
		assert.True(t, policy.HasReminder(domain.Reminder30Day))

		// A second pass has nothing new to send.
		again, err := renewalSvc.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, again.Reminders30)
		assert.Len(t, sender.sent, 1)
	})

	t.Run("15 day mark takes precedence", func(t *testing.T) {
		createRenewalPolicy(t, renewalRepo, "POL-15-001", 10*24*time.Hour)

		result, err := renewalSvc.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Reminders15)
		assert.Equal(t, 0, result.Reminders30)

		policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-15-001")
		require.NoError(t, err)
		assert.Equal(t, domain.RenewalStatusReminder15Sent, policy.Status)
		assert.True(t, policy.HasReminder(domain.Reminder15Day))
		assert.False(t, policy.HasReminder(domain.Reminder30Day))
	})

	t.Run("policy past the 30 day mark gets both reminders over time", func(t *testing.T) {
		createRenewalPolicy(t, renewalRepo, "POL-BOTH-001", 25*24*time.Hour)

		first, err := renewalSvc.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, first.Reminders30)

		// Simulate the policy crossing the 15-day mark before the next pass.
		policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-BOTH-001")
		require.NoError(t, err)
		policy.ExpiryDate = time.Now().UTC().Add(12 * 24 * time.Hour)
		require.NoError(t, renewalRepo.Update(ctx, policy))

		second, err := renewalSvc.Scan(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Reminders15)

		reloaded, err := renewalRepo.GetByPolicyNumber(ctx, "POL-BOTH-001")
		require.NoError(t, err)
		assert.True(t, reloaded.HasReminder(domain.Reminder30Day))
		assert.True(t, reloaded.HasReminder(domain.Reminder15Day))
	})
}

func TestRenewalService_Scan_FlagsExpiringQuote(t *testing.T) {
	renewalSvc, renewalRepo, _, quoteSvc := setupRenewalService(t)
	ctx := context.Background()

	issued := issueQuote(t, quoteSvc, ctx)

	policy := createRenewalPolicy(t, renewalRepo, "POL-EXP-001", 20*24*time.Hour)
	policy.QuoteID = &issued.ID
	require.NoError(t, renewalRepo.Update(ctx, policy))

	result, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExpiringFlagged)
	assert.Equal(t, 0, result.WriteFailures)

	reloaded, err := quoteSvc.GetByID(ctx, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusExpiring, reloaded.Status)

	// The quote is already flagged, so the next pass skips it.
	again, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ExpiringFlagged)
	assert.Equal(t, 0, again.WriteFailures)
}

func TestRenewalService_Scan_SendFailure(t *testing.T) {
	renewalSvc, renewalRepo, sender, _ := setupRenewalService(t)
	ctx := context.Background()

	createRenewalPolicy(t, renewalRepo, "POL-FAIL-001", 20*24*time.Hour)

	sender.fail = true
	result, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SendFailures)
	assert.Equal(t, 0, result.Reminders30)

	// The reminder was not recorded, so the next pass retries it.
	policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-FAIL-001")
	require.NoError(t, err)
	assert.False(t, policy.HasReminder(domain.Reminder30Day))
	assert.Equal(t, domain.RenewalStatusPending, policy.Status)

	sender.fail = false
	retry, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Reminders30)
}

func TestRenewalService_Scan_BadPhoneNumber(t *testing.T) {
	renewalSvc, renewalRepo, sender, _ := setupRenewalService(t)
	ctx := context.Background()

	policy := createRenewalPolicy(t, renewalRepo, "POL-PHONE-001", 20*24*time.Hour)
	policy.CustomerPhone = "not a number"
	require.NoError(t, renewalRepo.Update(ctx, policy))

	result, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SendFailures)
	assert.Empty(t, sender.sent)
}

func TestRenewalService_Scan_LapsedPolicy(t *testing.T) {
	renewalSvc, renewalRepo, _, quoteSvc := setupRenewalService(t)
	ctx := context.Background()

	createRenewalPolicy(t, renewalRepo, "POL-LAPSED-001", -3*24*time.Hour)

	result, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PoolAssigned)

	policy, err := renewalRepo.GetByPolicyNumber(ctx, "POL-LAPSED-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RenewalStatusAssignedToPool, policy.Status)
	require.NotNil(t, policy.RenewalQuoteID)

	quote, err := quoteSvc.GetByID(ctx, *policy.RenewalQuoteID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Equal(t, domain.QuoteSourceAgentPortal, quote.Source)
	assert.Equal(t, "Amina Fakhro", quote.Customer.FirstName)
	assert.Equal(t, 210.0, quote.Premium)

	// A second pass must not create another renewal quote.
	again, err := renewalSvc.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.PoolAssigned)

	reloaded, err := renewalRepo.GetByPolicyNumber(ctx, "POL-LAPSED-001")
	require.NoError(t, err)
	assert.Equal(t, policy.RenewalQuoteID, reloaded.RenewalQuoteID)
}

func TestRenewalService_TerminalStatuses(t *testing.T) {
	renewalSvc, renewalRepo, _, _ := setupRenewalService(t)
	ctx := context.Background()

	createRenewalPolicy(t, renewalRepo, "POL-TERM-001", 20*24*time.Hour)
	createRenewalPolicy(t, renewalRepo, "POL-TERM-002", 20*24*time.Hour)

	require.NoError(t, renewalSvc.MarkRenewed(ctx, "POL-TERM-001"))
	renewed, err := renewalRepo.GetByPolicyNumber(ctx, "POL-TERM-001")
	require.NoError(t, err)
	assert.Equal(t, domain.RenewalStatusRenewed, renewed.Status)

	require.NoError(t, renewalSvc.MarkDeclined(ctx, "POL-TERM-002"))
	declined, err := renewalRepo.GetByPolicyNumber(ctx, "POL-TERM-002")
	require.NoError(t, err)
	assert.Equal(t, domain.RenewalStatusCustomerDeclined, declined.Status)

	assert.ErrorIs(t, renewalSvc.MarkRenewed(ctx, "POL-MISSING"), service.ErrNotFound)
}

func TestRenewalService_SyncDisabled(t *testing.T) {
	renewalSvc, _, _, _ := setupRenewalService(t)

	// No policy book connection configured: sync is a quiet no-op.
	synced, failed, err := renewalSvc.SyncFromPolicyBook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, synced)
	assert.Equal(t, 0, failed)
}
