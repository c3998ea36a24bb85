package domain

import (
	"time"

	"github.com/google/uuid"
)

// Request and response DTOs for the HTTP API. Timestamps in responses are
// ISO 8601 strings; requests carry RFC 3339 where a time is needed.

// CreateQuoteRequest creates a new draft quote
type CreateQuoteRequest struct {
	Source         QuoteSource     `json:"source" validate:"required,oneof=agent_portal customer_portal"`
	Customer       CustomerDetails `json:"customer" validate:"required"`
	Vehicle        VehicleDetails  `json:"vehicle"`
	TravelCriteria *TravelCriteria `json:"travelCriteria,omitempty"`
	RiskFactors    RiskFactors     `json:"riskFactors"`
	SelectedPlanID string          `json:"selectedPlanId,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	PlanName       string          `json:"planName,omitempty"`
	Premium        float64         `json:"premium" validate:"gte=0"`
	AgentID        string          `json:"agentId,omitempty"`
	AgentName      string          `json:"agentName,omitempty"`
}

// UpdateQuoteRequest edits an existing quote. Pointer fields distinguish
// "not sent" from zero values; Version carries the optimistic-concurrency
// token the client read.
type UpdateQuoteRequest struct {
	Customer       *CustomerDetails `json:"customer,omitempty"`
	Vehicle        *VehicleDetails  `json:"vehicle,omitempty"`
	TravelCriteria *TravelCriteria  `json:"travelCriteria,omitempty"`
	RiskFactors    *RiskFactors     `json:"riskFactors,omitempty"`
	SelectedPlanID *string          `json:"selectedPlanId,omitempty"`
	Provider       *string          `json:"provider,omitempty"`
	PlanName       *string          `json:"planName,omitempty"`
	Premium        *float64         `json:"premium,omitempty" validate:"omitempty,gte=0"`
	Version        int64            `json:"version" validate:"required,gt=0"`
}

// ApprovalDecisionRequest records a credit-control decision
type ApprovalDecisionRequest struct {
	Note string `json:"note,omitempty" validate:"max=1000"`
}

// SendPaymentLinkRequest sends a payment link for the selected plan
type SendPaymentLinkRequest struct {
	SelectedPlanID string  `json:"selectedPlanId" validate:"required"`
	Provider       string  `json:"provider" validate:"required"`
	PlanName       string  `json:"planName" validate:"required"`
	Premium        float64 `json:"premium" validate:"gte=0"`
}

// QuoteDTO is the API representation of a quote
type QuoteDTO struct {
	ID                uuid.UUID                `json:"id"`
	QuoteReference    string                   `json:"quoteReference"`
	Status            QuoteStatus              `json:"status"`
	Source            QuoteSource              `json:"source"`
	Customer          CustomerDetails          `json:"customer"`
	Vehicle           VehicleDetails           `json:"vehicle"`
	TravelCriteria    *TravelCriteria          `json:"travelCriteria,omitempty"`
	RiskFactors       RiskFactors              `json:"riskFactors"`
	SelectedPlanID    string                   `json:"selectedPlanId,omitempty"`
	Provider          string                   `json:"provider,omitempty"`
	PlanName          string                   `json:"planName,omitempty"`
	Premium           float64                  `json:"premium"`
	DiscountCode      string                   `json:"discountCode,omitempty"`
	RequiresApproval  bool                     `json:"requiresApproval"`
	Assignment        *AssignmentDTO           `json:"assignment,omitempty"`
	AssignmentHistory []AssignmentHistoryEntry `json:"assignmentHistory,omitempty"`
	ApprovalHandledAt *string                  `json:"approvalHandledAt,omitempty"`
	AgentID           string                   `json:"agentId,omitempty"`
	AgentName         string                   `json:"agentName,omitempty"`
	Version           int64                    `json:"version"`
	CreatedAt         string                   `json:"createdAt"` // ISO 8601
	UpdatedAt         string                   `json:"updatedAt"` // ISO 8601
}

// AssignmentDTO is the API representation of a quote assignment, with the
// urgency bucket computed at read time.
type AssignmentDTO struct {
	AssignedToAgentID   string           `json:"assignedToAgentId"`
	AssignedToAgentName string           `json:"assignedToAgentName"`
	AssignedByAgentID   string           `json:"assignedByAgentId"`
	AssignedByAgentName string           `json:"assignedByAgentName"`
	AssignedAt          string           `json:"assignedAt"` // ISO 8601
	Status              AssignmentStatus `json:"status"`
	Urgency             Urgency          `json:"urgency"`
	ClaimedAt           *string          `json:"claimedAt,omitempty"`
	RejectedAt          *string          `json:"rejectedAt,omitempty"`
	CompletedAt         *string          `json:"completedAt,omitempty"`
	RejectionReason     RejectionReason  `json:"rejectionReason,omitempty"`
	RejectionNote       string           `json:"rejectionNote,omitempty"`
	AgentNotes          []AgentNote      `json:"agentNotes,omitempty"`
}

// AssignManyRequest assigns a batch of quotes to one agent
type AssignManyRequest struct {
	QuoteIDs            []uuid.UUID `json:"quoteIds" validate:"required,min=1,dive,required"`
	AssignedToAgentID   string      `json:"assignedToAgentId" validate:"required"`
	AssignedToAgentName string      `json:"assignedToAgentName" validate:"required"`
}

// AssignManyResult reports the outcome for a single quote in a batch
// assignment. The batch never rolls back: each quote succeeds or fails on
// its own.
type AssignManyResult struct {
	QuoteID uuid.UUID `json:"quoteId"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
}

// AssignManyResponse is the per-quote outcome of a batch assignment
type AssignManyResponse struct {
	Results   []AssignManyResult `json:"results"`
	Assigned  int                `json:"assigned"`
	Failed    int                `json:"failed"`
	Requested int                `json:"requested"`
}

// RejectAssignmentRequest rejects an assigned quote with a closed-set reason
type RejectAssignmentRequest struct {
	Reason RejectionReason `json:"reason" validate:"required"`
	Note   string          `json:"note,omitempty" validate:"max=1000"`
}

// AddAgentNoteRequest appends a note to an assignment
type AddAgentNoteRequest struct {
	Text       string     `json:"text" validate:"required,max=2000"`
	Reminder   bool       `json:"reminder"`
	ReminderAt *time.Time `json:"reminderAt,omitempty"`
}

// AuditLogEntryDTO is the API representation of an audit log entry
type AuditLogEntryDTO struct {
	ID        uuid.UUID   `json:"id"`
	QuoteID   *uuid.UUID  `json:"quoteId,omitempty"`
	Timestamp string      `json:"timestamp"` // ISO 8601
	UserID    string      `json:"userId"`
	UserName  string      `json:"userName"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
}

// RenewalPolicyDTO is the API representation of a tracked policy
type RenewalPolicyDTO struct {
	ID              uuid.UUID     `json:"id"`
	PolicyNumber    string        `json:"policyNumber"`
	QuoteID         *uuid.UUID    `json:"quoteId,omitempty"`
	CustomerName    string        `json:"customerName"`
	CustomerPhone   string        `json:"customerPhone"`
	Provider        string        `json:"provider"`
	PlanName        string        `json:"planName"`
	Premium         float64       `json:"premium"`
	ExpiryDate      string        `json:"expiryDate"` // ISO 8601
	DaysUntilExpiry int           `json:"daysUntilExpiry"`
	Status          RenewalStatus `json:"status"`
	RemindersSent   []string      `json:"remindersSent"`
	RenewalQuoteID  *uuid.UUID    `json:"renewalQuoteId,omitempty"`
}

// RedeemDiscountCodeRequest redeems a staff discount code against a quote
type RedeemDiscountCodeRequest struct {
	Code    string    `json:"code" validate:"required,max=20"`
	QuoteID uuid.UUID `json:"quoteId" validate:"required"`
}

// LoginRequest authenticates a user by username and password
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// LoginResponse carries the issued token and the resolved session role
type LoginResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   string       `json:"expiresAt"` // ISO 8601
	UserID      uuid.UUID    `json:"userId"`
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Roles       []string     `json:"roles"`
	ActiveRole  UserRoleType `json:"activeRole"`
}

// NotificationDTO is the API representation of a notification
type NotificationDTO struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	QuoteID   *uuid.UUID       `json:"quoteId,omitempty"`
	Read      bool             `json:"read"`
	ReadAt    *string          `json:"readAt,omitempty"`
	CreatedAt string           `json:"createdAt"` // ISO 8601
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginationParams are shared list parameters
type PaginationParams struct {
	Limit  int `json:"limit" validate:"omitempty,gte=1,lte=500"`
	Offset int `json:"offset" validate:"omitempty,gte=0"`
}

// QuoteFilter narrows quote list queries
type QuoteFilter struct {
	Status           *QuoteStatus      `json:"status,omitempty"`
	AssignmentStatus *AssignmentStatus `json:"assignmentStatus,omitempty"`
	AgentID          string            `json:"agentId,omitempty"`
	Source           *QuoteSource      `json:"source,omitempty"`
	Search           string            `json:"search,omitempty"`
	CreatedAfter     *time.Time        `json:"createdAfter,omitempty"`
	CreatedBefore    *time.Time        `json:"createdBefore,omitempty"`
	// Sort names a field (createdAt, updatedAt, premium); a leading "-"
	// reverses the order. Empty means newest first.
	Sort   string `json:"sort,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
