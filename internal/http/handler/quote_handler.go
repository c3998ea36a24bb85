package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/mapper"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// QuoteHandler handles quote CRUD and lifecycle endpoints
type QuoteHandler struct {
	quoteService  *service.QuoteService
	exportService *service.ExportService
	auditService  *service.AuditLogService
	logger        *zap.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService, exportService *service.ExportService, auditService *service.AuditLogService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService:  quoteService,
		exportService: exportService,
		auditService:  auditService,
		logger:        logger,
	}
}

// List godoc
// @Summary List quotes
// @Description Returns quotes matching the filter, newest first.
// @Tags Quotes
// @Produce json
// @Param status query string false "Quote status"
// @Param assignmentStatus query string false "Assignment status"
// @Param agentId query string false "Agent ID"
// @Param source query string false "Quote source"
// @Param search query string false "Search by reference, agent, customer name or CPR"
// @Param createdAfter query string false "Only quotes created at or after this time (RFC 3339 or YYYY-MM-DD)"
// @Param createdBefore query string false "Only quotes created at or before this time (RFC 3339 or YYYY-MM-DD)"
// @Param sort query string false "Sort field: createdAt, updatedAt or premium; prefix with - for descending"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{} "Quotes with total count"
// @Failure 400 {object} domain.ErrorResponse "Invalid filter"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQuoteFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	quotes, total, err := h.quoteService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": mapper.ToQuoteDTOs(quotes, time.Now().UTC()),
		"total":  total,
	})
}

// Create godoc
// @Summary Create quote
// @Description Creates a new draft quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO "Created quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid request body"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// GetByID godoc
// @Summary Get quote
// @Description Returns a single quote by ID.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// Update godoc
// @Summary Update quote
// @Description Updates a quote's details. The request must carry the version the client read; a stale version is rejected with 409. Editing risk-relevant fields while the quote is in the approval flow voids the pending or granted decision and returns the quote to draft.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteRequest true "Fields to update"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID or request body"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Version conflict"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to update quote", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// RequestException godoc
// @Summary Request installment exception
// @Description Submits a draft quote for a credit-control exception decision.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.ApprovalDecisionRequest false "Optional note"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not in a state that allows the request"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/request-exception [post]
func (h *QuoteHandler) RequestException(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.quoteService.RequestException)
}

// GrantApproval godoc
// @Summary Grant approval
// @Description Records a positive credit-control decision on a pending quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.ApprovalDecisionRequest false "Optional note"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not pending approval"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/approve [post]
func (h *QuoteHandler) GrantApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.quoteService.GrantApproval)
}

// RejectApproval godoc
// @Summary Reject approval
// @Description Records a negative credit-control decision on a pending quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.ApprovalDecisionRequest false "Optional note"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not pending approval"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/reject-approval [post]
func (h *QuoteHandler) RejectApproval(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.quoteService.RejectApproval)
}

// decide handles the three note-carrying decision endpoints
func (h *QuoteHandler) decide(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, note string, actor service.Actor) (*domain.Quote, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.ApprovalDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body is allowed
		req = domain.ApprovalDecisionRequest{}
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := op(r.Context(), id, req.Note, actorFromRequest(r))
	if err != nil {
		h.logger.Error("lifecycle operation failed", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// SendPaymentLink godoc
// @Summary Send payment link
// @Description Sends the customer a payment link for the selected plan and records the plan choice on the quote.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.SendPaymentLinkRequest true "Selected plan"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID or request body"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not in a state that allows sending"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/send-link [post]
func (h *QuoteHandler) SendPaymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.SendPaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.SendPaymentLink(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to send payment link", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// LinkClicked godoc
// @Summary Record payment link click
// @Description Webhook-style endpoint for the customer portal: records that the customer opened the payment link.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not awaiting the click"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/link-clicked [post]
func (h *QuoteHandler) LinkClicked(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.RecordLinkClicked)
}

// DocsUploaded godoc
// @Summary Record documents uploaded
// @Description Records that the customer finished uploading their documents.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not awaiting documents"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/docs-uploaded [post]
func (h *QuoteHandler) DocsUploaded(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.RecordDocsUploaded)
}

// PaymentStarted godoc
// @Summary Record payment started
// @Description Records that the customer began checkout.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not in a payable state"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/payment-started [post]
func (h *QuoteHandler) PaymentStarted(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.RecordPaymentStarted)
}

// ConfirmPayment godoc
// @Summary Confirm payment
// @Description Marks payment as received and the policy as issued.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not awaiting payment"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/confirm-payment [post]
func (h *QuoteHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.quoteService.ConfirmPayment)
}

// lifecycle handles the bodyless transition endpoints
func (h *QuoteHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID, actor service.Actor) (*domain.Quote, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := op(r.Context(), id, actorFromRequest(r))
	if err != nil {
		h.logger.Error("lifecycle operation failed", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// GetAuditTrail godoc
// @Summary Get quote audit trail
// @Description Returns the quote's audit entries, newest first. A query failure is an error, never an empty list.
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Param limit query int false "Max entries"
// @Success 200 {array} domain.AuditLogEntryDTO "Audit entries"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/{id}/audit [get]
func (h *QuoteHandler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	entries, err := h.auditService.GetForQuote(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to load audit trail", zap.Error(err), zap.String("quote_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to load audit trail")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToAuditLogEntryDTOs(entries))
}

// GetStats godoc
// @Summary Quote counts by status
// @Description Returns the number of quotes in each lifecycle status.
// @Tags Quotes
// @Produce json
// @Success 200 {object} map[string]int64 "Counts keyed by status"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/stats [get]
func (h *QuoteHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.quoteService.CountByStatus(r.Context())
	if err != nil {
		h.logger.Error("failed to count quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to count quotes")
		return
	}

	respondJSON(w, http.StatusOK, counts)
}

// Export godoc
// @Summary Export quotes to CSV
// @Description Streams the quotes matching the filter as a CSV file.
// @Tags Quotes
// @Produce text/csv
// @Param status query string false "Quote status"
// @Param agentId query string false "Agent ID"
// @Success 200 {string} string "CSV document"
// @Failure 400 {object} domain.ErrorResponse "Invalid filter"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /quotes/export [get]
func (h *QuoteHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseQuoteFilter(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.exportService.ExportQuotesCSV(r.Context(), filter, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to export quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export quotes")
		return
	}

	filename := "quotes-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// parseQuoteFilter builds a QuoteFilter from query parameters
func parseQuoteFilter(r *http.Request) (*domain.QuoteFilter, error) {
	filter := &domain.QuoteFilter{
		AgentID: r.URL.Query().Get("agentId"),
		Search:  r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.QuoteStatus(s)
		if !status.IsValid() {
			return nil, fmt.Errorf("invalid status: %s", s)
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("assignmentStatus"); s != "" {
		status := domain.AssignmentStatus(s)
		filter.AssignmentStatus = &status
	}
	if s := r.URL.Query().Get("source"); s != "" {
		source := domain.QuoteSource(s)
		filter.Source = &source
	}
	if s := r.URL.Query().Get("createdAfter"); s != "" {
		t, err := parseFilterTime(s)
		if err != nil {
			return nil, fmt.Errorf("invalid createdAfter: %s", s)
		}
		filter.CreatedAfter = &t
	}
	if s := r.URL.Query().Get("createdBefore"); s != "" {
		t, err := parseFilterTime(s)
		if err != nil {
			return nil, fmt.Errorf("invalid createdBefore: %s", s)
		}
		filter.CreatedBefore = &t
	}
	if s := r.URL.Query().Get("sort"); s != "" {
		filter.Sort = s
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("invalid limit: %s", l)
		}
		filter.Limit = limit
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid offset: %s", o)
		}
		filter.Offset = offset
	}

	return filter, nil
}

// parseFilterTime accepts RFC 3339 or a bare date
func parseFilterTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
