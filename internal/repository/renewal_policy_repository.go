package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RenewalPolicyRepository handles renewal policy data access
type RenewalPolicyRepository struct {
	db *gorm.DB
}

// NewRenewalPolicyRepository creates a new renewal policy repository
func NewRenewalPolicyRepository(db *gorm.DB) *RenewalPolicyRepository {
	return &RenewalPolicyRepository{db: db}
}

func (r *RenewalPolicyRepository) Create(ctx context.Context, policy *domain.RenewalPolicy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *RenewalPolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalPolicy, error) {
	var policy domain.RenewalPolicy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *RenewalPolicyRepository) GetByPolicyNumber(ctx context.Context, policyNumber string) (*domain.RenewalPolicy, error) {
	var policy domain.RenewalPolicy
	err := r.db.WithContext(ctx).First(&policy, "policy_number = ?", policyNumber).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// List returns all tracked policies, soonest expiry first
func (r *RenewalPolicyRepository) List(ctx context.Context) ([]domain.RenewalPolicy, error) {
	var policies []domain.RenewalPolicy
	err := r.db.WithContext(ctx).Order("expiry_date ASC").Find(&policies).Error
	return policies, err
}

// ListExpiringBefore returns non-terminal policies expiring before the cutoff.
// This is the renewal scanner's working set.
func (r *RenewalPolicyRepository) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.RenewalPolicy, error) {
	var policies []domain.RenewalPolicy
	err := r.db.WithContext(ctx).
		Where("expiry_date <= ?", cutoff).
		Where("status NOT IN ?", []domain.RenewalStatus{
			domain.RenewalStatusRenewed, domain.RenewalStatusCustomerDeclined,
		}).
		Order("expiry_date ASC").
		Find(&policies).Error
	return policies, err
}

// Update saves the whole policy record
func (r *RenewalPolicyRepository) Update(ctx context.Context, policy *domain.RenewalPolicy) error {
	policy.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(policy).Error
}

// RecordReminder appends a reminder type to the policy's idempotency record
// and moves it to the matching status, in one write.
func (r *RenewalPolicyRepository) RecordReminder(ctx context.Context, id uuid.UUID, reminder domain.ReminderType, status domain.RenewalStatus, sent pq.StringArray) error {
	updates := map[string]interface{}{
		"reminders_sent": sent,
		"status":         status,
		"updated_at":     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&domain.RenewalPolicy{}).Where("id = ?", id).Updates(updates).Error
}

// SetStatus updates only the renewal status
func (r *RenewalPolicyRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.RenewalStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&domain.RenewalPolicy{}).Where("id = ?", id).Updates(updates).Error
}

// LinkRenewalQuote ties a pool-assigned policy to the quote created for it
func (r *RenewalPolicyRepository) LinkRenewalQuote(ctx context.Context, id, quoteID uuid.UUID) error {
	updates := map[string]interface{}{
		"renewal_quote_id": quoteID,
		"updated_at":       time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&domain.RenewalPolicy{}).Where("id = ?", id).Updates(updates).Error
}

// UpsertByPolicyNumber inserts the policy or refreshes an existing record
// with the latest data from the policy book, preserving local renewal state.
func (r *RenewalPolicyRepository) UpsertByPolicyNumber(ctx context.Context, policy *domain.RenewalPolicy) error {
	var existing domain.RenewalPolicy
	err := r.db.WithContext(ctx).Where("policy_number = ?", policy.PolicyNumber).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(policy).Error
	}

	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"customer_name":  policy.CustomerName,
		"customer_phone": policy.CustomerPhone,
		"provider":       policy.Provider,
		"plan_name":      policy.PlanName,
		"premium":        policy.Premium,
		"expiry_date":    policy.ExpiryDate,
		"updated_at":     time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Model(&domain.RenewalPolicy{}).Where("id = ?", existing.ID).Updates(updates).Error
}
