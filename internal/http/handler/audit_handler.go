package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/mapper"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// AuditLogListResponse represents a paginated list of audit logs
type AuditLogListResponse struct {
	Data       []domain.AuditLogEntryDTO `json:"data"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"pageSize"`
	TotalPages int                       `json:"totalPages"`
}

// AuditStatsResponse represents audit log statistics
type AuditStatsResponse struct {
	ActionCounts map[domain.AuditAction]int64 `json:"actionCounts"`
	StartTime    string                       `json:"startTime"`
	EndTime      string                       `json:"endTime"`
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action type"
// @Param quoteId query string false "Filter by quote ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} AuditLogListResponse
// @Failure 400 {object} domain.ErrorResponse "Invalid filter"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	params := service.AuditLogQueryParams{
		UserID:   r.URL.Query().Get("userId"),
		Page:     page,
		PageSize: pageSize,
	}

	if actionStr := r.URL.Query().Get("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		params.Action = &action
	}

	if quoteIDStr := r.URL.Query().Get("quoteId"); quoteIDStr != "" {
		quoteID, err := uuid.Parse(quoteIDStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
			return
		}
		params.QuoteID = &quoteID
	}

	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid startTime, expected RFC3339")
			return
		}
		params.StartTime = &start
	}

	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid endTime, expected RFC3339")
			return
		}
		params.EndTime = &end
	}

	entries, total, err := h.auditService.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list audit logs")
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	respondJSON(w, http.StatusOK, AuditLogListResponse{
		Data:       mapper.ToAuditLogEntryDTOs(entries),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetStats godoc
// @Summary Audit log statistics
// @Description Returns entry counts by action for a time range (defaults to the last 30 days)
// @Tags Audit
// @Produce json
// @Param startTime query string false "Start time (RFC3339)"
// @Param endTime query string false "End time (RFC3339)"
// @Success 200 {object} AuditStatsResponse
// @Failure 400 {object} domain.ErrorResponse "Invalid time range"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security BearerAuth
// @Router /audit/stats [get]
func (h *AuditHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		parsed, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid startTime, expected RFC3339")
			return
		}
		start = parsed
	}
	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		parsed, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid endTime, expected RFC3339")
			return
		}
		end = parsed
	}

	counts, err := h.auditService.GetStats(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to load audit stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load audit stats")
		return
	}

	respondJSON(w, http.StatusOK, AuditStatsResponse{
		ActionCounts: counts,
		StartTime:    start.Format(time.RFC3339),
		EndTime:      end.Format(time.RFC3339),
	})
}

// parseIntQuery parses an integer query parameter with a default
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
