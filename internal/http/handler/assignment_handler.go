package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/mapper"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// AssignmentHandler handles the pool workflow endpoints
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// AssignMany godoc
// @Summary Assign quotes to an agent
// @Description Assigns a batch of quotes to one agent. The batch never rolls back: the response reports a per-quote outcome, and quotes with a live assignment fail rather than get silently reassigned.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.AssignManyRequest true "Quote IDs and target agent"
// @Success 200 {object} domain.AssignManyResponse "Per-quote outcomes"
// @Failure 400 {object} domain.ErrorResponse "Invalid request body"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/assign [post]
func (h *AssignmentHandler) AssignMany(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.assignmentService.AssignMany(r.Context(), &req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("batch assignment failed", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetPool godoc
// @Summary List the assignment pool
// @Description Returns quotes in the given assignment states, oldest first. Defaults to unclaimed (assigned) quotes.
// @Tags Assignments
// @Produce json
// @Param status query string false "Comma-separated assignment statuses (assigned, claimed, rejected, completed)"
// @Success 200 {array} domain.QuoteDTO "Pool quotes"
// @Failure 400 {object} domain.ErrorResponse "Invalid status"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/pool [get]
func (h *AssignmentHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	var statuses []domain.AssignmentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			status := domain.AssignmentStatus(strings.TrimSpace(part))
			if !status.IsValid() {
				respondWithError(w, http.StatusBadRequest, "Invalid assignment status: "+string(status))
				return
			}
			statuses = append(statuses, status)
		}
	}

	quotes, err := h.assignmentService.GetPool(r.Context(), statuses)
	if err != nil {
		h.logger.Error("failed to list pool", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTOs(quotes, time.Now().UTC()))
}

// GetMine godoc
// @Summary List my active assignments
// @Description Returns the authenticated agent's active workload.
// @Tags Assignments
// @Produce json
// @Success 200 {array} domain.QuoteDTO "Assigned quotes"
// @Failure 401 {object} domain.ErrorResponse "Unauthorized"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/mine [get]
func (h *AssignmentHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	quotes, err := h.assignmentService.GetForAgent(r.Context(), userCtx.UserID.String())
	if err != nil {
		h.logger.Error("failed to list agent workload", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTOs(quotes, time.Now().UTC()))
}

// Claim godoc
// @Summary Claim an assigned quote
// @Description Claims a pool quote for the authenticated agent. Concurrent claims are decided by the version check; the loser gets 409.
// @Tags Assignments
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Claimed quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Already claimed or lost the race"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/{id}/claim [post]
func (h *AssignmentHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.assignmentService.Claim(r.Context(), id, actorFromRequest(r))
	if err != nil {
		h.logger.Warn("claim failed", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// Reject godoc
// @Summary Reject an assignment
// @Description Rejects an assigned quote with a reason from the closed set.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.RejectAssignmentRequest true "Rejection reason"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID, body, or reason"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Assignment already terminal"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/{id}/reject [post]
func (h *AssignmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.RejectAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.assignmentService.Reject(r.Context(), id, req.Reason, req.Note, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to reject assignment", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// Complete godoc
// @Summary Complete an assignment
// @Description Closes out an assignment. Only legal once the parent quote is issued.
// @Tags Assignments
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not issued or assignment terminal"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/{id}/complete [post]
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	quote, err := h.assignmentService.MarkCompleted(r.Context(), id, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to complete assignment", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}

// AddNote godoc
// @Summary Add an agent note
// @Description Appends a note to the assignment. Notes are append-only; no edit or delete exists.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.AddAgentNoteRequest true "Note text and optional reminder"
// @Success 200 {object} domain.QuoteDTO "Updated quote"
// @Failure 400 {object} domain.ErrorResponse "Invalid quote ID or body"
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote has no assignment"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /assignments/{id}/notes [post]
func (h *AssignmentHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.AddAgentNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.assignmentService.AddNote(r.Context(), id, &req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("failed to add note", zap.Error(err), zap.String("quote_id", id.String()))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote, time.Now().UTC()))
}
