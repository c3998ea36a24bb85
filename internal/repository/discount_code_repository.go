package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// DiscountCodeRepository handles staff discount code data access
type DiscountCodeRepository struct {
	db *gorm.DB
}

// NewDiscountCodeRepository creates a new discount code repository
func NewDiscountCodeRepository(db *gorm.DB) *DiscountCodeRepository {
	return &DiscountCodeRepository{db: db}
}

func (r *DiscountCodeRepository) Create(ctx context.Context, code *domain.StaffDiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *DiscountCodeRepository) CreateBatch(ctx context.Context, codes []*domain.StaffDiscountCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(codes).Error
}

func (r *DiscountCodeRepository) GetByCode(ctx context.Context, code string) (*domain.StaffDiscountCode, error) {
	var dc domain.StaffDiscountCode
	err := r.db.WithContext(ctx).First(&dc, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

// ListByStaff returns a staff member's codes for a given allocation year
func (r *DiscountCodeRepository) ListByStaff(ctx context.Context, staffID string, year int) ([]domain.StaffDiscountCode, error) {
	var codes []domain.StaffDiscountCode
	err := r.db.WithContext(ctx).
		Where("staff_id = ? AND allocation_year = ?", staffID, year).
		Order("tier DESC, code ASC").
		Find(&codes).Error
	return codes, err
}

// CountByStaffAndTier counts codes already allocated to a staff member for
// a tier in a year, used to enforce the fixed yearly allocation.
func (r *DiscountCodeRepository) CountByStaffAndTier(ctx context.Context, staffID string, tier domain.DiscountTier, year int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.StaffDiscountCode{}).
		Where("staff_id = ? AND tier = ? AND allocation_year = ?", staffID, tier, year).
		Count(&count).Error
	return count, err
}

// MarkUsed flips an unused code to used with usage metadata. The is_used
// guard in the WHERE clause makes redemption single-use under concurrency:
// zero rows affected means another redemption won.
func (r *DiscountCodeRepository) MarkUsed(ctx context.Context, code string, agentID string, quoteID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&domain.StaffDiscountCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{
			"is_used":          true,
			"used_at":          time.Now().UTC(),
			"used_by_agent_id": agentID,
			"used_on_quote_id": quoteID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
