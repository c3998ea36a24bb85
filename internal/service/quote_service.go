package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// QuoteService owns quote CRUD and the lifecycle state machine. Every
// status change goes through the transition table; no handler or job writes
// Quote.Status directly.
type QuoteService struct {
	quoteRepo       repository.QuoteStore
	auditSvc        *AuditLogService
	notifySvc       *NotificationService
	sender          messaging.Sender
	renewalRepo     *repository.RenewalPolicyRepository
	paymentLinkBase string
	logger          *zap.Logger
}

// NewQuoteService creates a new quote service. sender and renewalRepo may
// be nil: payment links then skip delivery and issued policies are not
// registered for renewal tracking.
func NewQuoteService(quoteRepo repository.QuoteStore, auditSvc *AuditLogService, notifySvc *NotificationService, sender messaging.Sender, renewalRepo *repository.RenewalPolicyRepository, paymentLinkBase string, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		quoteRepo:       quoteRepo,
		auditSvc:        auditSvc,
		notifySvc:       notifySvc,
		sender:          sender,
		renewalRepo:     renewalRepo,
		paymentLinkBase: paymentLinkBase,
		logger:          logger,
	}
}

// Create persists a new draft quote
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest, actor Actor) (*domain.Quote, error) {
	quote := &domain.Quote{
		ID:             uuid.New(),
		QuoteReference: newQuoteReference(),
		Status:         domain.QuoteStatusDraft,
		Source:         req.Source,
		Customer:       req.Customer,
		Vehicle:        req.Vehicle,
		TravelCriteria: req.TravelCriteria,
		RiskFactors:    req.RiskFactors,
		SelectedPlanID: req.SelectedPlanID,
		Provider:       req.Provider,
		PlanName:       req.PlanName,
		Premium:        req.Premium,
		AgentID:        req.AgentID,
		AgentName:      req.AgentName,
		Version:        1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		s.logger.Error("failed to create quote", zap.Error(err))
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionQuoteCreated,
		fmt.Sprintf("Quote %s created from %s", quote.QuoteReference, quote.Source), actor)

	s.logger.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("reference", quote.QuoteReference),
		zap.String("source", string(quote.Source)))

	return quote, nil
}

// GetByID fetches a single quote
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quote, nil
}

// GetAll returns every quote, newest first
func (s *QuoteService) GetAll(ctx context.Context) ([]domain.Quote, error) {
	return s.quoteRepo.GetAll(ctx)
}

// List returns quotes matching the filter
func (s *QuoteService) List(ctx context.Context, filter *domain.QuoteFilter) ([]domain.Quote, int64, error) {
	return s.quoteRepo.List(ctx, filter)
}

// Update applies an edit to a quote. Two rules are enforced here:
//
// Optimistic concurrency: the request carries the version the client read;
// a concurrent writer surfaces as domain.ErrVersionConflict.
//
// Approval invalidation: if the quote sits anywhere in the approval flow
// and the edit touches a risk-relevant field (vehicle value, make, model,
// or either risk factor), the quote drops back to draft and the approval
// timestamp is cleared, because the decision no longer covers the new
// configuration.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest, actor Actor) (*domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if quote.Status == domain.QuoteStatusIssued || quote.Status == domain.QuoteStatusExpiring {
		return nil, fmt.Errorf("%w: issued quotes are read-only", ErrInvalidInput)
	}

	if req.Version != quote.Version {
		return nil, domain.ErrVersionConflict
	}

	before := *quote
	applyQuoteUpdate(quote, req)

	invalidated := false
	if quote.Status.InApprovalFlow() && domain.RiskDetailsChanged(&before, quote) {
		if err := quote.ApplyEvent(domain.EventRiskDetailsChanged); err != nil {
			return nil, err
		}
		quote.ApprovalHandledAt = nil
		invalidated = true
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionQuoteUpdated, "Quote details updated", actor)
	if invalidated {
		s.appendAudit(ctx, quote.ID, domain.AuditActionApprovalVoided,
			"Risk details changed; approval decision voided, quote returned to draft", actor)
		s.logger.Info("approval invalidated by risk edit",
			zap.String("quote_id", quote.ID.String()),
			zap.String("previous_status", string(before.Status)))
	}

	return quote, nil
}

// RequestException submits a draft quote for a credit-control installment
// exception decision.
func (s *QuoteService) RequestException(ctx context.Context, id uuid.UUID, note string, actor Actor) (*domain.Quote, error) {
	return s.transition(ctx, id, domain.EventRequestException, actor,
		domain.AuditActionExceptionRequest,
		fmt.Sprintf("Installment exception requested. %s", note),
		func(q *domain.Quote) {})
}

// GrantApproval records a positive credit-control decision
func (s *QuoteService) GrantApproval(ctx context.Context, id uuid.UUID, note string, actor Actor) (*domain.Quote, error) {
	quote, err := s.transition(ctx, id, domain.EventGrantApproval, actor,
		domain.AuditActionApprovalGranted,
		fmt.Sprintf("Approval granted by %s. %s", actor.Name, note),
		func(q *domain.Quote) {
			now := time.Now().UTC()
			q.ApprovalHandledAt = &now
		})
	if err != nil {
		return nil, err
	}

	s.notifyAgent(ctx, quote, domain.NotificationTypeApprovalGranted,
		"Approval granted",
		fmt.Sprintf("Quote %s was approved by credit control", quote.QuoteReference))
	return quote, nil
}

// RejectApproval records a negative credit-control decision
func (s *QuoteService) RejectApproval(ctx context.Context, id uuid.UUID, note string, actor Actor) (*domain.Quote, error) {
	quote, err := s.transition(ctx, id, domain.EventRejectApproval, actor,
		domain.AuditActionApprovalRejected,
		fmt.Sprintf("Approval rejected by %s. %s", actor.Name, note),
		func(q *domain.Quote) {
			now := time.Now().UTC()
			q.ApprovalHandledAt = &now
		})
	if err != nil {
		return nil, err
	}

	s.notifyAgent(ctx, quote, domain.NotificationTypeApprovalRejected,
		"Approval rejected",
		fmt.Sprintf("Quote %s was rejected by credit control", quote.QuoteReference))
	return quote, nil
}

// SendPaymentLink sends the customer a payment link for the selected plan
// and denormalizes the plan choice onto the quote. Delivery happens before
// the transition is persisted: a link the customer never received must not
// leave the quote in link_sent; the caller retries instead.
func (s *QuoteService) SendPaymentLink(ctx context.Context, id uuid.UUID, req *domain.SendPaymentLinkRequest, actor Actor) (*domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := quote.ApplyEvent(domain.EventSendPaymentLink); err != nil {
		return nil, err
	}
	quote.SelectedPlanID = req.SelectedPlanID
	quote.Provider = req.Provider
	quote.PlanName = req.PlanName
	if req.Premium > 0 {
		quote.Premium = req.Premium
	}

	if s.sender != nil {
		to, err := messaging.NormalizePhone(quote.Customer.Phone)
		if err != nil {
			return nil, fmt.Errorf("%w: customer phone: %v", ErrInvalidInput, err)
		}
		msg := messaging.Message{
			To:       to,
			Template: messaging.TemplatePaymentLink,
			Params: map[string]string{
				"provider":  quote.Provider,
				"reference": quote.QuoteReference,
				"link":      s.paymentLinkBase + "/" + quote.QuoteReference,
			},
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Warn("payment link delivery failed",
				zap.String("quote_id", quote.ID.String()),
				zap.Error(err))
			return nil, fmt.Errorf("deliver payment link: %w", err)
		}
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionLinkSent,
		fmt.Sprintf("Payment link sent for %s / %s", req.Provider, req.PlanName), actor)

	s.logger.Info("payment link sent",
		zap.String("quote_id", quote.ID.String()),
		zap.String("reference", quote.QuoteReference))

	return quote, nil
}

// RecordLinkClicked records that the customer opened the payment link
func (s *QuoteService) RecordLinkClicked(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Quote, error) {
	return s.transition(ctx, id, domain.EventLinkClicked, actor,
		domain.AuditActionLinkClicked, "Customer opened the payment link",
		func(q *domain.Quote) {})
}

// RecordDocsUploaded records that the customer uploaded their documents
func (s *QuoteService) RecordDocsUploaded(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Quote, error) {
	return s.transition(ctx, id, domain.EventDocsUploaded, actor,
		domain.AuditActionDocsUploaded, "Customer documents uploaded",
		func(q *domain.Quote) {})
}

// RecordPaymentStarted records that the customer began checkout
func (s *QuoteService) RecordPaymentStarted(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Quote, error) {
	return s.transition(ctx, id, domain.EventPaymentStarted, actor,
		domain.AuditActionPaymentPending, "Payment initiated by customer",
		func(q *domain.Quote) {})
}

// ConfirmPayment marks payment as received and the policy as issued. The
// new policy is registered with the renewal scanner for expiry tracking.
func (s *QuoteService) ConfirmPayment(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Quote, error) {
	quote, err := s.transition(ctx, id, domain.EventConfirmPayment, actor,
		domain.AuditActionIssued, "Payment confirmed; policy issued",
		func(q *domain.Quote) {})
	if err != nil {
		return nil, err
	}

	s.trackIssuedPolicy(ctx, quote)
	return quote, nil
}

// MarkExpiring flags an issued policy's quote as approaching expiry.
// Applied by the renewal scanner when the tracked policy enters the
// reminder window.
func (s *QuoteService) MarkExpiring(ctx context.Context, id uuid.UUID, actor Actor) (*domain.Quote, error) {
	return s.transition(ctx, id, domain.EventExpiryApproaching, actor,
		domain.AuditActionExpiring, "Policy expiry approaching; renewal window open",
		func(q *domain.Quote) {})
}

// trackIssuedPolicy creates the renewal record for a freshly issued policy
// so the scanner picks it up when expiry approaches a year out. A failure
// here is logged, not fatal: the policy book sync backstops missing rows.
func (s *QuoteService) trackIssuedPolicy(ctx context.Context, quote *domain.Quote) {
	if s.renewalRepo == nil {
		return
	}

	policy := &domain.RenewalPolicy{
		PolicyNumber:  "POL-" + quote.QuoteReference,
		QuoteID:       &quote.ID,
		CustomerName:  quote.Customer.FullName(),
		CustomerPhone: quote.Customer.Phone,
		Provider:      quote.Provider,
		PlanName:      quote.PlanName,
		Premium:       quote.Premium,
		ExpiryDate:    time.Now().UTC().AddDate(1, 0, 0),
		Status:        domain.RenewalStatusPending,
	}
	if err := s.renewalRepo.Create(ctx, policy); err != nil {
		s.logger.Warn("issued policy not registered for renewal tracking",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
	}
}

// CountByStatus is used by dashboards; delegates when the underlying store
// supports it.
func (s *QuoteService) CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error) {
	type counter interface {
		CountByStatus(ctx context.Context) (map[domain.QuoteStatus]int64, error)
	}
	if c, ok := s.quoteRepo.(counter); ok {
		return c.CountByStatus(ctx)
	}

	quotes, err := s.quoteRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.QuoteStatus]int64)
	for _, q := range quotes {
		counts[q.Status]++
	}
	return counts, nil
}

// transition runs one lifecycle event end to end: load, validate against
// the transition table, mutate, persist with the version check, audit.
func (s *QuoteService) transition(ctx context.Context, id uuid.UUID, event domain.LifecycleEvent, actor Actor, auditAction domain.AuditAction, auditDetails string, mutate func(*domain.Quote)) (*domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := quote.ApplyEvent(event); err != nil {
		return nil, err
	}
	mutate(quote)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Warn("lifecycle transition lost a concurrent write",
				zap.String("quote_id", id.String()),
				zap.String("event", string(event)))
		}
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, auditAction, auditDetails, actor)

	s.logger.Info("quote transitioned",
		zap.String("quote_id", quote.ID.String()),
		zap.String("event", string(event)),
		zap.String("status", string(quote.Status)))

	return quote, nil
}

// appendAudit writes an audit entry, logging but not propagating failures:
// a committed status change must not be rolled back because its audit write
// failed. The AuditLogService has already logged the error in detail.
func (s *QuoteService) appendAudit(ctx context.Context, quoteID uuid.UUID, action domain.AuditAction, details string, actor Actor) {
	if err := s.auditSvc.Append(ctx, quoteID, action, details, actor); err != nil {
		s.logger.Warn("audit entry lost for committed change",
			zap.String("quote_id", quoteID.String()),
			zap.String("action", string(action)))
	}
}

func (s *QuoteService) notifyAgent(ctx context.Context, quote *domain.Quote, nType domain.NotificationType, title, message string) {
	if s.notifySvc == nil || quote.AgentID == "" {
		return
	}
	if err := s.notifySvc.Notify(ctx, quote.AgentID, nType, title, message, &quote.ID); err != nil {
		s.logger.Warn("failed to notify agent",
			zap.String("quote_id", quote.ID.String()),
			zap.String("agent_id", quote.AgentID),
			zap.Error(err))
	}
}

// applyQuoteUpdate copies the set fields of the request onto the quote
func applyQuoteUpdate(quote *domain.Quote, req *domain.UpdateQuoteRequest) {
	if req.Customer != nil {
		quote.Customer = *req.Customer
	}
	if req.Vehicle != nil {
		quote.Vehicle = *req.Vehicle
	}
	if req.TravelCriteria != nil {
		quote.TravelCriteria = req.TravelCriteria
	}
	if req.RiskFactors != nil {
		quote.RiskFactors = *req.RiskFactors
	}
	if req.SelectedPlanID != nil {
		quote.SelectedPlanID = *req.SelectedPlanID
	}
	if req.Provider != nil {
		quote.Provider = *req.Provider
	}
	if req.PlanName != nil {
		quote.PlanName = *req.PlanName
	}
	if req.Premium != nil {
		quote.Premium = *req.Premium
	}
}

// newQuoteReference builds a human-readable reference like GA-2026-4F2A9C
func newQuoteReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("GA-%d-%s", time.Now().UTC().Year(), suffix)
}
