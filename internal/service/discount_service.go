package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/repository"
	"go.uber.org/zap"
)

// DiscountService manages staff referral discount codes: a fixed yearly
// allocation per staff member (one 15%, three 10%, three 5%), each code
// single-use.
type DiscountService struct {
	discountRepo *repository.DiscountCodeRepository
	quoteRepo    repository.QuoteStore
	auditSvc     *AuditLogService
	logger       *zap.Logger
}

// NewDiscountService creates a new discount service
func NewDiscountService(discountRepo *repository.DiscountCodeRepository, quoteRepo repository.QuoteStore, auditSvc *AuditLogService, logger *zap.Logger) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		quoteRepo:    quoteRepo,
		auditSvc:     auditSvc,
		logger:       logger,
	}
}

// AllocateYearly issues a staff member their code allocation for a year.
// Already-allocated tiers are topped up, never duplicated, so the call is
// safe to repeat.
func (s *DiscountService) AllocateYearly(ctx context.Context, staffID, staffName string, year int) ([]domain.StaffDiscountCode, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	var created []*domain.StaffDiscountCode
	for tier, quota := range domain.AllocationPerYear {
		existing, err := s.discountRepo.CountByStaffAndTier(ctx, staffID, tier, year)
		if err != nil {
			return nil, err
		}
		for i := existing; i < int64(quota); i++ {
			created = append(created, &domain.StaffDiscountCode{
				Code:           newDiscountCode(tier),
				StaffID:        staffID,
				StaffName:      staffName,
				Tier:           tier,
				AllocationYear: year,
			})
		}
	}

	if err := s.discountRepo.CreateBatch(ctx, created); err != nil {
		return nil, err
	}

	s.logger.Info("discount codes allocated",
		zap.String("staff_id", staffID),
		zap.Int("year", year),
		zap.Int("created", len(created)))

	return s.discountRepo.ListByStaff(ctx, staffID, year)
}

// ListForStaff returns a staff member's codes for a year
func (s *DiscountService) ListForStaff(ctx context.Context, staffID string, year int) ([]domain.StaffDiscountCode, error) {
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	return s.discountRepo.ListByStaff(ctx, staffID, year)
}

// Redeem applies a code to a quote. The single-use guarantee lives in the
// repository's conditional update, so two concurrent redemptions of the
// same code cannot both succeed.
func (s *DiscountService) Redeem(ctx context.Context, req *domain.RedeemDiscountCodeRequest, actor Actor) (*domain.StaffDiscountCode, error) {
	code, err := s.discountRepo.GetByCode(ctx, req.Code)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if code.IsUsed {
		return nil, ErrCodeAlreadyUsed
	}

	quote, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.discountRepo.MarkUsed(ctx, req.Code, actor.ID, req.QuoteID); err != nil {
		if repository.IsNotFound(err) {
			// The conditional update found no unused row: someone else
			// redeemed the code between our read and write.
			return nil, ErrCodeAlreadyUsed
		}
		return nil, err
	}

	quote.DiscountCode = req.Code
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		s.logger.Error("code redeemed but quote not updated",
			zap.String("code", req.Code),
			zap.String("quote_id", req.QuoteID.String()),
			zap.Error(err))
		return nil, err
	}

	if err := s.auditSvc.Append(ctx, quote.ID, domain.AuditActionDiscountApplied,
		fmt.Sprintf("Discount code %s (%d%%) applied", code.Code, code.Tier), actor); err != nil {
		s.logger.Warn("audit entry lost for discount redemption",
			zap.String("quote_id", quote.ID.String()))
	}

	redeemed, err := s.discountRepo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

// newDiscountCode builds a code like GA15-7C2F9A
func newDiscountCode(tier domain.DiscountTier) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("GA%d-%s", tier, suffix)
}
