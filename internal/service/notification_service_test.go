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

func setupNotificationService(t *testing.T) *service.NotificationService {
	db := testutil.SetupCleanTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestData(t, db) })

	return service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop())
}

func TestNotificationService(t *testing.T) {
	notifySvc := setupNotificationService(t)
	ctx := context.Background()
	quoteID := uuid.New()

	require.NoError(t, notifySvc.Notify(ctx, "agent-1", domain.NotificationTypeQuoteAssigned,
		"Quote assigned to you", "Quote GA-2026-AB12CD was assigned to you", &quoteID))
	require.NoError(t, notifySvc.Notify(ctx, "agent-1", domain.NotificationTypeApprovalGranted,
		"Approval granted", "Quote GA-2026-AB12CD was approved", &quoteID))
	require.NoError(t, notifySvc.Notify(ctx, "agent-2", domain.NotificationTypeRenewalDue,
		"Renewal due", "Policy POL-001 expires soon", nil))

	t.Run("list is scoped to the user", func(t *testing.T) {
		notifications, total, err := notifySvc.ListForUser(ctx, "agent-1", 1, 20, false)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, notifications, 2)
	})

	t.Run("unread count", func(t *testing.T) {
		count, err := notifySvc.CountUnread(ctx, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("mark one as read", func(t *testing.T) {
		notifications, _, err := notifySvc.ListForUser(ctx, "agent-1", 1, 20, false)
		require.NoError(t, err)
		require.NotEmpty(t, notifications)

		require.NoError(t, notifySvc.MarkAsRead(ctx, notifications[0].ID, "agent-1"))

		count, err := notifySvc.CountUnread(ctx, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		unread, _, err := notifySvc.ListForUser(ctx, "agent-1", 1, 20, true)
		require.NoError(t, err)
		assert.Len(t, unread, 1)
	})

	t.Run("cannot read another user's notification", func(t *testing.T) {
		notifications, _, err := notifySvc.ListForUser(ctx, "agent-2", 1, 20, false)
		require.NoError(t, err)
		require.NotEmpty(t, notifications)

		err = notifySvc.MarkAsRead(ctx, notifications[0].ID, "agent-1")
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("mark all as read", func(t *testing.T) {
		require.NoError(t, notifySvc.MarkAllAsRead(ctx, "agent-1"))

		count, err := notifySvc.CountUnread(ctx, "agent-1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		// Other users' notifications are untouched.
		other, err := notifySvc.CountUnread(ctx, "agent-2")
		require.NoError(t, err)
		assert.Equal(t, 1, other)
	})

	t.Run("unknown notification", func(t *testing.T) {
		err := notifySvc.MarkAsRead(ctx, uuid.New(), "agent-1")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
