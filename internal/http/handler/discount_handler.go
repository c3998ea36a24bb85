package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// DiscountHandler handles staff discount code endpoints
type DiscountHandler struct {
	discountService *service.DiscountService
	logger          *zap.Logger
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *service.DiscountService, logger *zap.Logger) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		logger:          logger,
	}
}

// AllocateDiscountCodesRequest allocates a staff member's yearly batch
type AllocateDiscountCodesRequest struct {
	StaffID   string `json:"staffId" validate:"required,max=100"`
	StaffName string `json:"staffName" validate:"required,max=200"`
	Year      int    `json:"year" validate:"required,min=2020,max=2100"`
}

// Allocate godoc
// @Summary Allocate yearly discount codes
// @Description Allocates a staff member's discount code batch for a year. Allocation is idempotent per staff member and year; a repeat call returns the existing batch.
// @Tags Discounts
// @Accept json
// @Produce json
// @Param request body AllocateDiscountCodesRequest true "Staff member and year"
// @Success 200 {array} domain.StaffDiscountCode "Allocated codes"
// @Failure 400 {object} domain.ErrorResponse "Invalid request body"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /discounts/allocate [post]
func (h *DiscountHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	var req AllocateDiscountCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	codes, err := h.discountService.AllocateYearly(r.Context(), req.StaffID, req.StaffName, req.Year)
	if err != nil {
		h.logger.Error("failed to allocate discount codes",
			zap.Error(err),
			zap.String("staff_id", req.StaffID),
			zap.Int("year", req.Year))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, codes)
}

// ListMine godoc
// @Summary List my discount codes
// @Description Returns the authenticated staff member's discount codes for a year, defaulting to the current year.
// @Tags Discounts
// @Produce json
// @Param year query int false "Allocation year (default: current year)"
// @Success 200 {array} domain.StaffDiscountCode "Discount codes"
// @Failure 401 {object} domain.ErrorResponse "Unauthorized"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /discounts/mine [get]
func (h *DiscountHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	codes, err := h.discountService.ListForStaff(r.Context(), userCtx.UserID.String(), year)
	if err != nil {
		h.logger.Error("failed to list discount codes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list discount codes")
		return
	}

	respondJSON(w, http.StatusOK, codes)
}

// Redeem godoc
// @Summary Redeem a discount code
// @Description Redeems a discount code against a quote. Codes are single use; a burned code cannot be reapplied even to the same quote.
// @Tags Discounts
// @Accept json
// @Produce json
// @Param request body domain.RedeemDiscountCodeRequest true "Code and quote"
// @Success 200 {object} domain.StaffDiscountCode "Redeemed code"
// @Failure 400 {object} domain.ErrorResponse "Invalid request body"
// @Failure 404 {object} domain.ErrorResponse "Code or quote not found"
// @Failure 409 {object} domain.ErrorResponse "Code already used"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /discounts/redeem [post]
func (h *DiscountHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req domain.RedeemDiscountCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	code, err := h.discountService.Redeem(r.Context(), &req, actorFromRequest(r))
	if err != nil {
		h.logger.Warn("discount redemption failed", zap.Error(err), zap.String("code", req.Code))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, code)
}
