package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/gulfassure/quoting-api/internal/policybook"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// RenewalScanResult summarizes one scanner pass
type RenewalScanResult struct {
	Scanned         int `json:"scanned"`
	Reminders30     int `json:"reminders30"`
	Reminders15     int `json:"reminders15"`
	ExpiringFlagged int `json:"expiringFlagged"`
	PoolAssigned    int `json:"poolAssigned"`
	SendFailures    int `json:"sendFailures"`
	WriteFailures   int `json:"writeFailures"`
}

// RenewalService tracks in-force policies toward expiry. The scanner sends
// a reminder the first time a policy crosses the 30-day and 15-day marks
// (idempotent via the per-policy remindersSent record) and hands lapsed,
// unactioned policies to the agent pool as fresh renewal quotes.
type RenewalService struct {
	renewalRepo *repository.RenewalPolicyRepository
	quoteSvc    *QuoteService
	sender      messaging.Sender
	policyBook  *policybook.Client
	logger      *zap.Logger
}

// NewRenewalService creates a new renewal service. policyBook may be nil
// when the policy book connection is disabled; SyncFromPolicyBook becomes a
// no-op then.
func NewRenewalService(renewalRepo *repository.RenewalPolicyRepository, quoteSvc *QuoteService, sender messaging.Sender, policyBook *policybook.Client, logger *zap.Logger) *RenewalService {
	return &RenewalService{
		renewalRepo: renewalRepo,
		quoteSvc:    quoteSvc,
		sender:      sender,
		policyBook:  policyBook,
		logger:      logger,
	}
}

// SyncFromPolicyBook pulls soon-to-expire issued policies from the policy
// administration system into the local renewal table. Local renewal state
// (reminders sent, pipeline status) survives the refresh.
func (s *RenewalService) SyncFromPolicyBook(ctx context.Context) (synced int, failed int, err error) {
	if !s.policyBook.IsEnabled() {
		return 0, 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, 31)
	policies, err := s.policyBook.FetchPoliciesExpiringBefore(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch policies from policy book: %w", err)
	}

	for i := range policies {
		record := policies[i].ToRenewalPolicy()
		if err := s.renewalRepo.UpsertByPolicyNumber(ctx, record); err != nil {
			s.logger.Warn("failed to upsert renewal policy",
				zap.String("policy_number", record.PolicyNumber),
				zap.Error(err))
			failed++
			continue
		}
		synced++
	}

	s.logger.Info("policy book sync finished",
		zap.Int("synced", synced),
		zap.Int("failed", failed))

	return synced, failed, nil
}

// List returns all tracked policies, soonest expiry first
func (s *RenewalService) List(ctx context.Context) ([]domain.RenewalPolicy, error) {
	return s.renewalRepo.List(ctx)
}

// MarkRenewed closes a policy's renewal pipeline as renewed
func (s *RenewalService) MarkRenewed(ctx context.Context, policyNumber string) error {
	return s.setTerminalStatus(ctx, policyNumber, domain.RenewalStatusRenewed)
}

// MarkDeclined closes a policy's renewal pipeline as declined by the customer
func (s *RenewalService) MarkDeclined(ctx context.Context, policyNumber string) error {
	return s.setTerminalStatus(ctx, policyNumber, domain.RenewalStatusCustomerDeclined)
}

func (s *RenewalService) setTerminalStatus(ctx context.Context, policyNumber string, status domain.RenewalStatus) error {
	policy, err := s.renewalRepo.GetByPolicyNumber(ctx, policyNumber)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return s.renewalRepo.SetStatus(ctx, policy.ID, status)
}

// Scan runs one scanner pass over everything expiring within the next 31
// days, plus anything already lapsed. A reminder that fails to send is not
// recorded, so the next pass retries it.
func (s *RenewalService) Scan(ctx context.Context) (*RenewalScanResult, error) {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, 31)

	policies, err := s.renewalRepo.ListExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring policies: %w", err)
	}

	result := &RenewalScanResult{Scanned: len(policies)}

	for i := range policies {
		policy := &policies[i]
		days := policy.DaysUntilExpiry(now)

		if days >= 0 && days <= 30 {
			s.flagQuoteExpiring(ctx, policy, result)
		}

		switch {
		case days < 0:
			s.handleLapsed(ctx, policy, result)
		case days <= 15 && !policy.HasReminder(domain.Reminder15Day):
			s.sendReminder(ctx, policy, domain.Reminder15Day, domain.RenewalStatusReminder15Sent, result)
		case days <= 30 && !policy.HasReminder(domain.Reminder30Day):
			s.sendReminder(ctx, policy, domain.Reminder30Day, domain.RenewalStatusReminder30Sent, result)
		}
	}

	s.logger.Info("renewal scan finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("reminders_30", result.Reminders30),
		zap.Int("reminders_15", result.Reminders15),
		zap.Int("expiring_flagged", result.ExpiringFlagged),
		zap.Int("pool_assigned", result.PoolAssigned),
		zap.Int("send_failures", result.SendFailures))

	return result, nil
}

// flagQuoteExpiring moves the policy's source quote from issued to expiring
// once the policy enters the reminder window. Idempotent: a quote already
// past issued is left alone.
func (s *RenewalService) flagQuoteExpiring(ctx context.Context, policy *domain.RenewalPolicy, result *RenewalScanResult) {
	if policy.QuoteID == nil {
		return
	}

	quote, err := s.quoteSvc.GetByID(ctx, *policy.QuoteID)
	if err != nil {
		s.logger.Warn("cannot flag expiring quote",
			zap.String("policy_number", policy.PolicyNumber),
			zap.String("quote_id", policy.QuoteID.String()),
			zap.Error(err))
		return
	}
	if quote.Status != domain.QuoteStatusIssued {
		return
	}

	if _, err := s.quoteSvc.MarkExpiring(ctx, quote.ID, Actor{ID: "renewal-scanner", Name: "Renewal Scanner"}); err != nil {
		s.logger.Error("failed to mark quote expiring",
			zap.String("policy_number", policy.PolicyNumber),
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		result.WriteFailures++
		return
	}
	result.ExpiringFlagged++
}

func (s *RenewalService) sendReminder(ctx context.Context, policy *domain.RenewalPolicy, reminder domain.ReminderType, status domain.RenewalStatus, result *RenewalScanResult) {
	phone, err := messaging.NormalizePhone(policy.CustomerPhone)
	if err != nil {
		s.logger.Warn("cannot send renewal reminder, bad phone number",
			zap.String("policy_number", policy.PolicyNumber),
			zap.Error(err))
		result.SendFailures++
		return
	}

	template := messaging.TemplateRenewalReminder30
	if reminder == domain.Reminder15Day {
		template = messaging.TemplateRenewalReminder15
	}

	err = s.sender.Send(ctx, messaging.Message{
		To:       phone,
		Template: template,
		Params: map[string]string{
			"policy_number": policy.PolicyNumber,
			"expiry_date":   policy.ExpiryDate.Format("2006-01-02"),
		},
	})
	if err != nil {
		s.logger.Warn("renewal reminder delivery failed, will retry next scan",
			zap.String("policy_number", policy.PolicyNumber),
			zap.String("reminder", string(reminder)),
			zap.Error(err))
		result.SendFailures++
		return
	}

	sent := append(policy.RemindersSent, string(reminder))
	if err := s.renewalRepo.RecordReminder(ctx, policy.ID, reminder, status, sent); err != nil {
		s.logger.Error("reminder sent but not recorded; next scan may duplicate it",
			zap.String("policy_number", policy.PolicyNumber),
			zap.String("reminder", string(reminder)),
			zap.Error(err))
		result.WriteFailures++
		return
	}

	if reminder == domain.Reminder30Day {
		result.Reminders30++
	} else {
		result.Reminders15++
	}
}

// handleLapsed moves a lapsed, unactioned policy into the agent pool by
// creating a renewal quote for it.
func (s *RenewalService) handleLapsed(ctx context.Context, policy *domain.RenewalPolicy, result *RenewalScanResult) {
	if policy.Status == domain.RenewalStatusAssignedToPool {
		return
	}

	quote, err := s.quoteSvc.Create(ctx, &domain.CreateQuoteRequest{
		Source: domain.QuoteSourceAgentPortal,
		Customer: domain.CustomerDetails{
			FirstName: policy.CustomerName,
			Phone:     policy.CustomerPhone,
		},
		Provider: policy.Provider,
		PlanName: policy.PlanName,
		Premium:  policy.Premium,
	}, Actor{ID: "renewal-scanner", Name: "Renewal Scanner"})
	if err != nil {
		s.logger.Error("failed to create renewal quote for lapsed policy",
			zap.String("policy_number", policy.PolicyNumber),
			zap.Error(err))
		result.WriteFailures++
		return
	}

	if err := s.renewalRepo.LinkRenewalQuote(ctx, policy.ID, quote.ID); err != nil {
		s.logger.Error("failed to link renewal quote",
			zap.String("policy_number", policy.PolicyNumber),
			zap.Error(err))
		result.WriteFailures++
		return
	}
	if err := s.renewalRepo.SetStatus(ctx, policy.ID, domain.RenewalStatusAssignedToPool); err != nil {
		s.logger.Error("failed to mark policy assigned to pool",
			zap.String("policy_number", policy.PolicyNumber),
			zap.Error(err))
		result.WriteFailures++
		return
	}

	result.PoolAssigned++
	s.logger.Info("lapsed policy assigned to pool",
		zap.String("policy_number", policy.PolicyNumber),
		zap.String("quote_id", quote.ID.String()))
}
