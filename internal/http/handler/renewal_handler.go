package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gulfassure/quoting-api/internal/mapper"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// RenewalHandler handles the renewal tracking endpoints
type RenewalHandler struct {
	renewalService *service.RenewalService
	logger         *zap.Logger
}

// NewRenewalHandler creates a new renewal handler
func NewRenewalHandler(renewalService *service.RenewalService, logger *zap.Logger) *RenewalHandler {
	return &RenewalHandler{
		renewalService: renewalService,
		logger:         logger,
	}
}

// List godoc
// @Summary List tracked renewals
// @Description Returns tracked policies ordered by expiry date, nearest first, with days until expiry computed at read time.
// @Tags Renewals
// @Produce json
// @Success 200 {array} domain.RenewalPolicyDTO "Tracked policies"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /renewals [get]
func (h *RenewalHandler) List(w http.ResponseWriter, r *http.Request) {
	policies, err := h.renewalService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list renewals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list renewals")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToRenewalPolicyDTOs(policies, time.Now().UTC()))
}

// MarkRenewed godoc
// @Summary Mark a policy renewed
// @Description Marks a tracked policy as renewed. Terminal; the scanner skips it afterwards.
// @Tags Renewals
// @Produce json
// @Param policyNumber path string true "Policy number"
// @Success 204 "Marked renewed"
// @Failure 404 {object} domain.ErrorResponse "Policy not tracked"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /renewals/{policyNumber}/renewed [put]
func (h *RenewalHandler) MarkRenewed(w http.ResponseWriter, r *http.Request) {
	policyNumber := chi.URLParam(r, "policyNumber")
	if policyNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Missing policy number")
		return
	}

	if err := h.renewalService.MarkRenewed(r.Context(), policyNumber); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// MarkDeclined godoc
// @Summary Mark a policy declined
// @Description Marks a tracked policy as declined by the customer. Terminal; the scanner skips it afterwards.
// @Tags Renewals
// @Produce json
// @Param policyNumber path string true "Policy number"
// @Success 204 "Marked declined"
// @Failure 404 {object} domain.ErrorResponse "Policy not tracked"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /renewals/{policyNumber}/declined [put]
func (h *RenewalHandler) MarkDeclined(w http.ResponseWriter, r *http.Request) {
	policyNumber := chi.URLParam(r, "policyNumber")
	if policyNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Missing policy number")
		return
	}

	if err := h.renewalService.MarkDeclined(r.Context(), policyNumber); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// TriggerScan godoc
// @Summary Run the renewal scan now
// @Description Syncs the policy book and runs the reminder scan immediately instead of waiting for the nightly schedule.
// @Tags Renewals
// @Produce json
// @Success 200 {object} service.RenewalScanResult "Scan counters"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /renewals/scan [post]
func (h *RenewalHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	synced, failed, err := h.renewalService.SyncFromPolicyBook(r.Context())
	if err != nil {
		h.logger.Error("policy book sync failed", zap.Error(err))
	} else if synced > 0 || failed > 0 {
		h.logger.Info("policy book synced",
			zap.Int("synced", synced),
			zap.Int("failed", failed))
	}

	result, err := h.renewalService.Scan(r.Context())
	if err != nil {
		h.logger.Error("renewal scan failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Renewal scan failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
