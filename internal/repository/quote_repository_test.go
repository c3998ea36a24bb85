package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"github.com/gulfassure/quoting-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupQuoteRepository(t *testing.T) *repository.QuoteRepository {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })
	return repository.NewQuoteRepository(db)
}

func newQuote(ref string) *domain.Quote {
	return &domain.Quote{
		ID:             uuid.New(),
		QuoteReference: ref,
		Status:         domain.QuoteStatusDraft,
		Source:         domain.QuoteSourceAgentPortal,
		Customer: domain.CustomerDetails{
			CPR:       "900101234",
			FirstName: "Ali",
			LastName:  "Mansoor",
			Phone:     "+97336001234",
		},
		Vehicle: domain.VehicleDetails{
			Make:         "Nissan",
			Model:        "Patrol",
			Year:         2021,
			InsuredValue: 18000,
		},
		Premium:   320,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestQuoteRepository_Update_VersionCheck(t *testing.T) {
	repo := setupQuoteRepository(t)
	ctx := context.Background()

	quote := newQuote("GA-2026-CAS001")
	require.NoError(t, repo.Create(ctx, quote))
	require.Equal(t, int64(1), quote.Version)

	t.Run("write with the read version succeeds and bumps it", func(t *testing.T) {
		quote.Premium = 350
		require.NoError(t, repo.Update(ctx, quote))
		assert.Equal(t, int64(2), quote.Version)

		stored, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, 350.0, stored.Premium)
		assert.Equal(t, int64(2), stored.Version)
	})

	t.Run("concurrent writers: exactly one wins", func(t *testing.T) {
		first, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)

		first.Premium = 400
		require.NoError(t, repo.Update(ctx, first))

		second.Premium = 999
		err = repo.Update(ctx, second)
		require.ErrorIs(t, err, domain.ErrVersionConflict)
		// The loser keeps the version it read, for a clean retry.
		assert.Equal(t, int64(2), second.Version)

		stored, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, 400.0, stored.Premium)
		assert.Equal(t, int64(3), stored.Version)
	})

	t.Run("missing row is not a version conflict", func(t *testing.T) {
		ghost := newQuote("GA-2026-GHOST1")
		ghost.Version = 1
		err := repo.Update(ctx, ghost)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.True(t, repository.IsNotFound(err))
	})
}

func TestQuoteRepository_List(t *testing.T) {
	repo := setupQuoteRepository(t)
	ctx := context.Background()

	now := time.Now().UTC()

	draft := newQuote("GA-2026-LIST01")
	draft.CreatedAt = now.Add(-48 * time.Hour)
	draft.UpdatedAt = draft.CreatedAt
	require.NoError(t, repo.Create(ctx, draft))

	issued := newQuote("GA-2026-LIST02")
	issued.Status = domain.QuoteStatusIssued
	issued.AgentID = "agent-5"
	issued.AgentName = "Zainab Husain"
	issued.Customer = domain.CustomerDetails{
		CPR:       "850505678",
		FirstName: "Fatima",
		LastName:  "Khalil",
		Phone:     "+97336005678",
	}
	issued.Premium = 520
	issued.CreatedAt = now.Add(-time.Hour)
	issued.UpdatedAt = issued.CreatedAt
	require.NoError(t, repo.Create(ctx, issued))

	t.Run("no filter returns everything", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, quotes, 2)
	})

	t.Run("status filter", func(t *testing.T) {
		status := domain.QuoteStatusIssued
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, issued.ID, quotes[0].ID)
	})

	t.Run("agent filter", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{AgentID: "agent-5"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
	})

	t.Run("reference search is case insensitive", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{Search: "list01"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, draft.ID, quotes[0].ID)
	})

	t.Run("customer name search is case insensitive", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{Search: "fatima kha"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, issued.ID, quotes[0].ID)
	})

	t.Run("cpr search", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{Search: "850505"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, issued.ID, quotes[0].ID)
	})

	t.Run("created date range", func(t *testing.T) {
		after := now.Add(-24 * time.Hour)
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{CreatedAfter: &after})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, issued.ID, quotes[0].ID)

		before := now.Add(-24 * time.Hour)
		quotes, total, err = repo.List(ctx, &domain.QuoteFilter{CreatedBefore: &before})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, draft.ID, quotes[0].ID)

		quotes, _, err = repo.List(ctx, &domain.QuoteFilter{CreatedAfter: &after, CreatedBefore: &before})
		require.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("sort", func(t *testing.T) {
		quotes, _, err := repo.List(ctx, &domain.QuoteFilter{Sort: "premium"})
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, draft.ID, quotes[0].ID)

		quotes, _, err = repo.List(ctx, &domain.QuoteFilter{Sort: "-premium"})
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, issued.ID, quotes[0].ID)

		quotes, _, err = repo.List(ctx, &domain.QuoteFilter{Sort: "createdAt"})
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, draft.ID, quotes[0].ID)

		// An unrecognized field falls back to newest first.
		quotes, _, err = repo.List(ctx, &domain.QuoteFilter{Sort: "premium; DROP TABLE quotes"})
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, issued.ID, quotes[0].ID)
	})

	t.Run("pagination caps the page but not the total", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &domain.QuoteFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, quotes, 1)
	})
}

func TestQuoteRepository_TravelCriteriaRoundTrip(t *testing.T) {
	repo := setupQuoteRepository(t)
	ctx := context.Background()

	start := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC)

	quote := newQuote("GA-2026-TRIP01")
	quote.TravelCriteria = &domain.TravelCriteria{
		Destination:    "Thailand",
		StartDate:      start,
		EndDate:        end,
		TravellerCount: 2,
	}
	require.NoError(t, repo.Create(ctx, quote))

	stored, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TravelCriteria)
	assert.Equal(t, "Thailand", stored.TravelCriteria.Destination)
	assert.Equal(t, 2, stored.TravelCriteria.TravellerCount)
	assert.True(t, stored.TravelCriteria.StartDate.Equal(start),
		"start date came back as %s", stored.TravelCriteria.StartDate)
	assert.True(t, stored.TravelCriteria.EndDate.Equal(end),
		"end date came back as %s", stored.TravelCriteria.EndDate)
}

func TestQuoteRepository_GetPool(t *testing.T) {
	repo := setupQuoteRepository(t)
	ctx := context.Background()

	older := newQuote("GA-2026-POOL01")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	older.Assignment = &domain.QuoteAssignment{
		AssignedToAgentID: "agent-1",
		AssignedAt:        time.Now().UTC().Add(-time.Hour),
		Status:            domain.AssignmentStatusAssigned,
	}
	require.NoError(t, repo.Create(ctx, older))

	newer := newQuote("GA-2026-POOL02")
	newer.Assignment = &domain.QuoteAssignment{
		AssignedToAgentID: "agent-1",
		AssignedAt:        time.Now().UTC(),
		Status:            domain.AssignmentStatusAssigned,
	}
	require.NoError(t, repo.Create(ctx, newer))

	unassigned := newQuote("GA-2026-POOL03")
	require.NoError(t, repo.Create(ctx, unassigned))

	t.Run("oldest first, unassigned excluded", func(t *testing.T) {
		pool, err := repo.GetPool(ctx, []domain.AssignmentStatus{domain.AssignmentStatusAssigned})
		require.NoError(t, err)
		require.Len(t, pool, 2)
		assert.Equal(t, older.ID, pool[0].ID)
		assert.Equal(t, newer.ID, pool[1].ID)
	})

	t.Run("assignment status column tracks the document", func(t *testing.T) {
		fresh, err := repo.GetByID(ctx, older.ID)
		require.NoError(t, err)
		fresh.Assignment.Status = domain.AssignmentStatusClaimed
		require.NoError(t, repo.Update(ctx, fresh))

		pool, err := repo.GetPool(ctx, []domain.AssignmentStatus{domain.AssignmentStatusAssigned})
		require.NoError(t, err)
		require.Len(t, pool, 1)
		assert.Equal(t, newer.ID, pool[0].ID)

		claimed, err := repo.GetPool(ctx, []domain.AssignmentStatus{domain.AssignmentStatusClaimed})
		require.NoError(t, err)
		require.Len(t, claimed, 1)
	})
}
