package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository persists the in-app notifications shown in the
// agent portal bell menu.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notification domain.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByUser returns one page of a user's notifications, newest first,
// along with the total count for the pager.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]domain.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []domain.Notification
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return r.markRead(r.db.WithContext(ctx).Where("id = ?", id))
}

// MarkAllAsRead clears every unread notification for the user in one update
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.markRead(r.db.WithContext(ctx).Where("user_id = ? AND read = ?", userID, false))
}

func (r *NotificationRepository) markRead(scope *gorm.DB) error {
	return scope.Model(&domain.Notification{}).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": time.Now(),
		}).Error
}

// CountUnread returns the badge count for the bell menu
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return int(count), err
}
