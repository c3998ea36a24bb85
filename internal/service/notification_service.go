package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// NotificationService manages in-app notification records for agents
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(notificationRepo *repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Notify creates a notification for a user
func (s *NotificationService) Notify(ctx context.Context, userID string, nType domain.NotificationType, title, message string, quoteID *uuid.UUID) error {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    nType,
		Title:   title,
		Message: message,
		QuoteID: quoteID,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("failed to create notification",
			zap.String("user_id", userID),
			zap.String("type", string(nType)),
			zap.Error(err))
		return err
	}
	return nil
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.notificationRepo.ListByUser(ctx, userID, page, pageSize, unreadOnly)
}

// MarkAsRead marks one notification as read, verifying ownership
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID string) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return ErrPermissionDenied
	}
	return s.notificationRepo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

// CountUnread returns the user's unread notification count
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}
