package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/service"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var supervisorActor = service.Actor{ID: "supervisor-1", Name: "Pool Supervisor"}

func setupAssignmentService(t *testing.T) (*service.AssignmentService, *service.QuoteService) {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	auditSvc := service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop())
	notifySvc := service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop())
	quoteRepo := repository.NewQuoteRepository(db)
	quoteSvc := service.NewQuoteService(quoteRepo, auditSvc, notifySvc, nil, nil, "", zap.NewNop())
	assignSvc := service.NewAssignmentService(quoteRepo, auditSvc, notifySvc, zap.NewNop())
	return assignSvc, quoteSvc
}

func TestAssignmentService_AssignMany(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()

	first, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)
	second, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	t.Run("assigns each quote and reports per-quote outcomes", func(t *testing.T) {
		resp, err := assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{first.ID, second.ID},
			AssignedToAgentID:   "agent-7",
			AssignedToAgentName: "Noor Jassim",
		}, supervisorActor)
		require.NoError(t, err)

		assert.Equal(t, 2, resp.Requested)
		assert.Equal(t, 2, resp.Assigned)
		assert.Equal(t, 0, resp.Failed)

		assigned, err := quoteSvc.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, assigned.Assignment)
		assert.Equal(t, domain.AssignmentStatusAssigned, assigned.Assignment.Status)
		assert.Equal(t, "agent-7", assigned.Assignment.AssignedToAgentID)
		assert.Equal(t, supervisorActor.ID, assigned.Assignment.AssignedByAgentID)
		assert.Len(t, assigned.AssignmentHistory, 1)
	})

	t.Run("live assignment is not silently replaced", func(t *testing.T) {
		missing := uuid.New()
		resp, err := assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{first.ID, missing},
			AssignedToAgentID:   "agent-8",
			AssignedToAgentName: "Yousif Kamal",
		}, supervisorActor)
		require.NoError(t, err)

		assert.Equal(t, 0, resp.Assigned)
		assert.Equal(t, 2, resp.Failed)
		require.Len(t, resp.Results, 2)
		assert.False(t, resp.Results[0].OK)
		assert.NotEmpty(t, resp.Results[0].Error)

		// The original assignee is untouched.
		kept, err := quoteSvc.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "agent-7", kept.Assignment.AssignedToAgentID)
	})
}

func TestAssignmentService_Claim(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()
	claimer := service.Actor{ID: "agent-9", Name: "Huda Salman"}

	assignQuote := func(t *testing.T) *domain.Quote {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)
		resp, err := assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{quote.ID},
			AssignedToAgentID:   "agent-7",
			AssignedToAgentName: "Noor Jassim",
		}, supervisorActor)
		require.NoError(t, err)
		require.Equal(t, 1, resp.Assigned)
		return quote
	}

	t.Run("claim takes ownership", func(t *testing.T) {
		quote := assignQuote(t)

		claimed, err := assignSvc.Claim(ctx, quote.ID, claimer)
		require.NoError(t, err)

		assert.Equal(t, domain.AssignmentStatusClaimed, claimed.Assignment.Status)
		assert.Equal(t, claimer.ID, claimed.Assignment.AssignedToAgentID)
		assert.Equal(t, claimer.ID, claimed.AgentID)
		assert.NotNil(t, claimed.Assignment.ClaimedAt)
	})

	t.Run("second claim loses", func(t *testing.T) {
		quote := assignQuote(t)

		_, err := assignSvc.Claim(ctx, quote.ID, claimer)
		require.NoError(t, err)

		_, err = assignSvc.Claim(ctx, quote.ID, service.Actor{ID: "agent-10", Name: "Sara Isa"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unassigned quote cannot be claimed", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)

		_, err = assignSvc.Claim(ctx, quote.ID, claimer)
		assert.ErrorIs(t, err, service.ErrNotAssigned)
	})

	t.Run("terminal assignment cannot be claimed", func(t *testing.T) {
		quote := assignQuote(t)
		_, err := assignSvc.Reject(ctx, quote.ID, domain.RejectionCustomerUnreachable, "", claimer)
		require.NoError(t, err)

		_, err = assignSvc.Claim(ctx, quote.ID, claimer)
		assert.ErrorIs(t, err, service.ErrAssignmentTerminal)
	})
}

func TestAssignmentService_Reject(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()

	quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)
	_, err = assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
		QuoteIDs:            []uuid.UUID{quote.ID},
		AssignedToAgentID:   "agent-7",
		AssignedToAgentName: "Noor Jassim",
	}, supervisorActor)
	require.NoError(t, err)

	t.Run("reason must come from the closed set", func(t *testing.T) {
		_, err := assignSvc.Reject(ctx, quote.ID, "felt like it", "", testActor)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("reject records reason and note", func(t *testing.T) {
		rejected, err := assignSvc.Reject(ctx, quote.ID, domain.RejectionPriceTooHigh, "quoted 40% above market", testActor)
		require.NoError(t, err)

		assert.Equal(t, domain.AssignmentStatusRejected, rejected.Assignment.Status)
		assert.Equal(t, domain.RejectionPriceTooHigh, rejected.Assignment.RejectionReason)
		assert.Equal(t, "quoted 40% above market", rejected.Assignment.RejectionNote)
		assert.NotNil(t, rejected.Assignment.RejectedAt)
	})

	t.Run("terminal assignment cannot be rejected again", func(t *testing.T) {
		_, err := assignSvc.Reject(ctx, quote.ID, domain.RejectionOther, "", testActor)
		assert.ErrorIs(t, err, service.ErrAssignmentTerminal)
	})
}

func TestAssignmentService_MarkCompleted(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()

	t.Run("requires an issued quote", func(t *testing.T) {
		quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
		require.NoError(t, err)
		_, err = assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{quote.ID},
			AssignedToAgentID:   "agent-7",
			AssignedToAgentName: "Noor Jassim",
		}, supervisorActor)
		require.NoError(t, err)

		_, err = assignSvc.MarkCompleted(ctx, quote.ID, testActor)
		assert.ErrorIs(t, err, service.ErrQuoteNotIssued)
	})

	t.Run("completes once issued", func(t *testing.T) {
		quote := issueQuote(t, quoteSvc, ctx)
		_, err := assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{quote.ID},
			AssignedToAgentID:   "agent-7",
			AssignedToAgentName: "Noor Jassim",
		}, supervisorActor)
		require.NoError(t, err)

		completed, err := assignSvc.MarkCompleted(ctx, quote.ID, testActor)
		require.NoError(t, err)

		assert.Equal(t, domain.AssignmentStatusCompleted, completed.Assignment.Status)
		assert.NotNil(t, completed.Assignment.CompletedAt)
	})
}

func TestAssignmentService_AddNote(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()

	quote, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	t.Run("requires an assignment", func(t *testing.T) {
		_, err := assignSvc.AddNote(ctx, quote.ID, &domain.AddAgentNoteRequest{Text: "called, no answer"}, testActor)
		assert.ErrorIs(t, err, service.ErrNotAssigned)
	})

	t.Run("notes are append-only", func(t *testing.T) {
		_, err = assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
			QuoteIDs:            []uuid.UUID{quote.ID},
			AssignedToAgentID:   "agent-7",
			AssignedToAgentName: "Noor Jassim",
		}, supervisorActor)
		require.NoError(t, err)

		_, err := assignSvc.AddNote(ctx, quote.ID, &domain.AddAgentNoteRequest{Text: "called, no answer"}, testActor)
		require.NoError(t, err)
		noted, err := assignSvc.AddNote(ctx, quote.ID, &domain.AddAgentNoteRequest{Text: "reached customer, call back tomorrow"}, testActor)
		require.NoError(t, err)

		require.Len(t, noted.Assignment.AgentNotes, 2)
		assert.Equal(t, "called, no answer", noted.Assignment.AgentNotes[0].Text)
		assert.Equal(t, "reached customer, call back tomorrow", noted.Assignment.AgentNotes[1].Text)
		assert.Equal(t, testActor.ID, noted.Assignment.AgentNotes[0].AuthorID)
	})
}

func TestAssignmentService_GetPool(t *testing.T) {
	assignSvc, quoteSvc := setupAssignmentService(t)
	ctx := context.Background()

	assigned, err := quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)
	_, err = assignSvc.AssignMany(ctx, &domain.AssignManyRequest{
		QuoteIDs:            []uuid.UUID{assigned.ID},
		AssignedToAgentID:   "agent-7",
		AssignedToAgentName: "Noor Jassim",
	}, supervisorActor)
	require.NoError(t, err)

	// An unassigned quote must never show up in a pool view.
	_, err = quoteSvc.Create(ctx, draftQuoteRequest(), testActor)
	require.NoError(t, err)

	t.Run("defaults to the assigned view", func(t *testing.T) {
		pool, err := assignSvc.GetPool(ctx, nil)
		require.NoError(t, err)
		require.Len(t, pool, 1)
		assert.Equal(t, assigned.ID, pool[0].ID)
	})

	t.Run("claimed view", func(t *testing.T) {
		_, err := assignSvc.Claim(ctx, assigned.ID, service.Actor{ID: "agent-9", Name: "Huda Salman"})
		require.NoError(t, err)

		pool, err := assignSvc.GetPool(ctx, []domain.AssignmentStatus{domain.AssignmentStatusClaimed})
		require.NoError(t, err)
		require.Len(t, pool, 1)

		empty, err := assignSvc.GetPool(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("agent workload", func(t *testing.T) {
		mine, err := assignSvc.GetForAgent(ctx, "agent-9")
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, assigned.ID, mine[0].ID)
	})
}
