package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// AssignmentService handles the pool workflow: batch assignment, claiming,
// rejection, completion and agent notes.
//
// Claiming is racy by nature (two agents acting on the same pool row), so
// every mutation here rides on the repository's version check: the loser of
// a race gets domain.ErrVersionConflict instead of silently overwriting.
type AssignmentService struct {
	quoteRepo repository.QuoteStore
	auditSvc  *AuditLogService
	notifySvc *NotificationService
	logger    *zap.Logger
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(quoteRepo repository.QuoteStore, auditSvc *AuditLogService, notifySvc *NotificationService, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		quoteRepo: quoteRepo,
		auditSvc:  auditSvc,
		notifySvc: notifySvc,
		logger:    logger,
	}
}

// AssignMany assigns a batch of quotes to one agent. The batch is not
// atomic: each quote succeeds or fails on its own and the response reports
// every outcome. Quotes with a live assignment are reported as failures
// rather than silently reassigned.
func (s *AssignmentService) AssignMany(ctx context.Context, req *domain.AssignManyRequest, actor Actor) (*domain.AssignManyResponse, error) {
	resp := &domain.AssignManyResponse{
		Requested: len(req.QuoteIDs),
		Results:   make([]domain.AssignManyResult, 0, len(req.QuoteIDs)),
	}

	for _, quoteID := range req.QuoteIDs {
		err := s.assignOne(ctx, quoteID, req.AssignedToAgentID, req.AssignedToAgentName, actor)
		result := domain.AssignManyResult{QuoteID: quoteID, OK: err == nil}
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
			s.logger.Warn("assignment failed",
				zap.String("quote_id", quoteID.String()),
				zap.String("agent_id", req.AssignedToAgentID),
				zap.Error(err))
		} else {
			resp.Assigned++
		}
		resp.Results = append(resp.Results, result)
	}

	s.logger.Info("batch assignment finished",
		zap.Int("requested", resp.Requested),
		zap.Int("assigned", resp.Assigned),
		zap.Int("failed", resp.Failed),
		zap.String("agent_id", req.AssignedToAgentID))

	return resp, nil
}

func (s *AssignmentService) assignOne(ctx context.Context, quoteID uuid.UUID, agentID, agentName string, actor Actor) error {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return err
	}

	if quote.Assignment != nil && !quote.Assignment.Status.IsTerminal() {
		return ErrQuoteAlreadyAssigned
	}

	now := time.Now().UTC()
	quote.Assignment = &domain.QuoteAssignment{
		AssignedToAgentID:   agentID,
		AssignedToAgentName: agentName,
		AssignedByAgentID:   actor.ID,
		AssignedByAgentName: actor.Name,
		AssignedAt:          now,
		Status:              domain.AssignmentStatusAssigned,
	}
	quote.AgentID = agentID
	quote.AgentName = agentName
	quote.AssignmentHistory = append(quote.AssignmentHistory, domain.AssignmentHistoryEntry{
		ID:              uuid.New(),
		Timestamp:       now,
		Action:          domain.AssignmentActionAssigned,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Details:         fmt.Sprintf("Assigned to %s", agentName),
	})

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionAssigned,
		fmt.Sprintf("Assigned to %s by %s", agentName, actor.Name), actor)

	if s.notifySvc != nil {
		if err := s.notifySvc.Notify(ctx, agentID, domain.NotificationTypeQuoteAssigned,
			"Quote assigned to you",
			fmt.Sprintf("Quote %s was assigned to you by %s", quote.QuoteReference, actor.Name),
			&quote.ID); err != nil {
			s.logger.Warn("failed to notify assigned agent",
				zap.String("quote_id", quote.ID.String()),
				zap.Error(err))
		}
	}

	return nil
}

// Claim moves an assigned quote to claimed. Any agent may claim a pool
// quote; concurrent claims are decided by the version check and the
// assignment-status guard, so exactly one claimer wins.
func (s *AssignmentService) Claim(ctx context.Context, quoteID uuid.UUID, actor Actor) (*domain.Quote, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.Assignment == nil {
		return nil, ErrNotAssigned
	}
	if quote.Assignment.Status != domain.AssignmentStatusAssigned {
		if quote.Assignment.Status.IsTerminal() {
			return nil, ErrAssignmentTerminal
		}
		return nil, fmt.Errorf("%w: assignment already claimed", ErrConflict)
	}

	now := time.Now().UTC()
	quote.Assignment.Status = domain.AssignmentStatusClaimed
	quote.Assignment.ClaimedAt = &now
	quote.Assignment.AssignedToAgentID = actor.ID
	quote.Assignment.AssignedToAgentName = actor.Name
	quote.AgentID = actor.ID
	quote.AgentName = actor.Name
	quote.AssignmentHistory = append(quote.AssignmentHistory, domain.AssignmentHistoryEntry{
		ID:              uuid.New(),
		Timestamp:       now,
		Action:          domain.AssignmentActionClaimed,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Details:         fmt.Sprintf("Claimed by %s", actor.Name),
	})

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Info("claim lost race",
				zap.String("quote_id", quoteID.String()),
				zap.String("agent_id", actor.ID))
		}
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionClaimed,
		fmt.Sprintf("Claimed by %s", actor.Name), actor)

	return quote, nil
}

// Reject marks an assignment rejected with a closed-set reason and returns
// the quote to the pool's rejected view.
func (s *AssignmentService) Reject(ctx context.Context, quoteID uuid.UUID, reason domain.RejectionReason, note string, actor Actor) (*domain.Quote, error) {
	if !reason.IsValid() {
		return nil, fmt.Errorf("%w: unknown rejection reason %q", ErrInvalidInput, reason)
	}

	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.Assignment == nil {
		return nil, ErrNotAssigned
	}
	if quote.Assignment.Status.IsTerminal() {
		return nil, ErrAssignmentTerminal
	}

	now := time.Now().UTC()
	quote.Assignment.Status = domain.AssignmentStatusRejected
	quote.Assignment.RejectedAt = &now
	quote.Assignment.RejectionReason = reason
	quote.Assignment.RejectionNote = note
	quote.AssignmentHistory = append(quote.AssignmentHistory, domain.AssignmentHistoryEntry{
		ID:              uuid.New(),
		Timestamp:       now,
		Action:          domain.AssignmentActionRejected,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Details:         fmt.Sprintf("Rejected: %s. %s", reason, note),
	})

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionAssignRejected,
		fmt.Sprintf("Assignment rejected by %s: %s", actor.Name, reason), actor)

	return quote, nil
}

// MarkCompleted closes out an assignment. Only legal once the parent quote
// is issued: completion means the agent saw the sale through.
func (s *AssignmentService) MarkCompleted(ctx context.Context, quoteID uuid.UUID, actor Actor) (*domain.Quote, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.Assignment == nil {
		return nil, ErrNotAssigned
	}
	if quote.Assignment.Status.IsTerminal() {
		return nil, ErrAssignmentTerminal
	}
	if quote.Status != domain.QuoteStatusIssued {
		return nil, ErrQuoteNotIssued
	}

	now := time.Now().UTC()
	quote.Assignment.Status = domain.AssignmentStatusCompleted
	quote.Assignment.CompletedAt = &now
	quote.AssignmentHistory = append(quote.AssignmentHistory, domain.AssignmentHistoryEntry{
		ID:              uuid.New(),
		Timestamp:       now,
		Action:          domain.AssignmentActionCompleted,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Details:         fmt.Sprintf("Completed by %s", actor.Name),
	})

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionAssignCompleted,
		fmt.Sprintf("Assignment completed by %s", actor.Name), actor)

	return quote, nil
}

// AddNote appends an agent note to the assignment. Notes are additive; no
// edit or delete exists.
func (s *AssignmentService) AddNote(ctx context.Context, quoteID uuid.UUID, req *domain.AddAgentNoteRequest, actor Actor) (*domain.Quote, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.Assignment == nil {
		return nil, ErrNotAssigned
	}

	now := time.Now().UTC()
	quote.Assignment.AgentNotes = append(quote.Assignment.AgentNotes, domain.AgentNote{
		ID:         uuid.New(),
		Text:       req.Text,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Reminder:   req.Reminder,
		ReminderAt: req.ReminderAt,
		CreatedAt:  now,
	})
	quote.AssignmentHistory = append(quote.AssignmentHistory, domain.AssignmentHistoryEntry{
		ID:              uuid.New(),
		Timestamp:       now,
		Action:          domain.AssignmentActionEdited,
		PerformedBy:     actor.ID,
		PerformedByName: actor.Name,
		Details:         "Note added",
	})

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, quote.ID, domain.AuditActionNoteAdded,
		fmt.Sprintf("Note added by %s", actor.Name), actor)

	return quote, nil
}

// GetPool returns quotes in the given assignment states, oldest first
func (s *AssignmentService) GetPool(ctx context.Context, statuses []domain.AssignmentStatus) ([]domain.Quote, error) {
	if len(statuses) == 0 {
		statuses = []domain.AssignmentStatus{domain.AssignmentStatusAssigned}
	}
	return s.quoteRepo.GetPool(ctx, statuses)
}

// GetForAgent returns an agent's active workload
func (s *AssignmentService) GetForAgent(ctx context.Context, agentID string) ([]domain.Quote, error) {
	return s.quoteRepo.GetByAgent(ctx, agentID)
}

func (s *AssignmentService) getQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quote, nil
}

func (s *AssignmentService) appendAudit(ctx context.Context, quoteID uuid.UUID, action domain.AuditAction, details string, actor Actor) {
	if err := s.auditSvc.Append(ctx, quoteID, action, details, actor); err != nil {
		s.logger.Warn("audit entry lost for committed change",
			zap.String("quote_id", quoteID.String()),
			zap.String("action", string(action)))
	}
}
