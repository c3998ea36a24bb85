package mapper

import (
	"time"

	"github.com/gulfassure/quoting-api/internal/domain"
)

const isoFormat = "2006-01-02T15:04:05Z"

// ToQuoteDTO converts Quote to QuoteDTO. Urgency on the assignment and the
// approval requirement are computed at read time, never stored.
func ToQuoteDTO(quote *domain.Quote, now time.Time) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:                quote.ID,
		QuoteReference:    quote.QuoteReference,
		Status:            quote.Status,
		Source:            quote.Source,
		Customer:          quote.Customer,
		Vehicle:           quote.Vehicle,
		TravelCriteria:    quote.TravelCriteria,
		RiskFactors:       quote.RiskFactors,
		SelectedPlanID:    quote.SelectedPlanID,
		Provider:          quote.Provider,
		PlanName:          quote.PlanName,
		Premium:           quote.Premium,
		DiscountCode:      quote.DiscountCode,
		RequiresApproval:  quote.RequiresApproval(),
		AssignmentHistory: quote.AssignmentHistory,
		AgentID:           quote.AgentID,
		AgentName:         quote.AgentName,
		Version:           quote.Version,
		CreatedAt:         quote.CreatedAt.UTC().Format(isoFormat),
		UpdatedAt:         quote.UpdatedAt.UTC().Format(isoFormat),
	}

	if quote.Assignment != nil {
		assignment := ToAssignmentDTO(quote.Assignment, now)
		dto.Assignment = &assignment
	}
	if quote.ApprovalHandledAt != nil {
		dto.ApprovalHandledAt = formatTimePtr(quote.ApprovalHandledAt)
	}

	return dto
}

// ToQuoteDTOs converts a slice of quotes
func ToQuoteDTOs(quotes []domain.Quote, now time.Time) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = ToQuoteDTO(&quotes[i], now)
	}
	return dtos
}

// ToAssignmentDTO converts QuoteAssignment to AssignmentDTO
func ToAssignmentDTO(a *domain.QuoteAssignment, now time.Time) domain.AssignmentDTO {
	return domain.AssignmentDTO{
		AssignedToAgentID:   a.AssignedToAgentID,
		AssignedToAgentName: a.AssignedToAgentName,
		AssignedByAgentID:   a.AssignedByAgentID,
		AssignedByAgentName: a.AssignedByAgentName,
		AssignedAt:          a.AssignedAt.UTC().Format(isoFormat),
		Status:              a.Status,
		Urgency:             domain.ClassifyUrgency(a.AssignedAt, now),
		ClaimedAt:           formatTimePtr(a.ClaimedAt),
		RejectedAt:          formatTimePtr(a.RejectedAt),
		CompletedAt:         formatTimePtr(a.CompletedAt),
		RejectionReason:     a.RejectionReason,
		RejectionNote:       a.RejectionNote,
		AgentNotes:          a.AgentNotes,
	}
}

// ToAuditLogEntryDTO converts AuditLogEntry to AuditLogEntryDTO
func ToAuditLogEntryDTO(entry *domain.AuditLogEntry) domain.AuditLogEntryDTO {
	return domain.AuditLogEntryDTO{
		ID:        entry.ID,
		QuoteID:   entry.QuoteID,
		Timestamp: entry.Timestamp.UTC().Format(isoFormat),
		UserID:    entry.UserID,
		UserName:  entry.UserName,
		Action:    entry.Action,
		Details:   entry.Details,
	}
}

// ToAuditLogEntryDTOs converts a slice of audit log entries
func ToAuditLogEntryDTOs(entries []domain.AuditLogEntry) []domain.AuditLogEntryDTO {
	dtos := make([]domain.AuditLogEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = ToAuditLogEntryDTO(&entries[i])
	}
	return dtos
}

// ToRenewalPolicyDTO converts RenewalPolicy to RenewalPolicyDTO.
// DaysUntilExpiry is relative to the supplied clock.
func ToRenewalPolicyDTO(policy *domain.RenewalPolicy, now time.Time) domain.RenewalPolicyDTO {
	reminders := policy.RemindersSent
	if reminders == nil {
		reminders = []string{}
	}
	return domain.RenewalPolicyDTO{
		ID:              policy.ID,
		PolicyNumber:    policy.PolicyNumber,
		QuoteID:         policy.QuoteID,
		CustomerName:    policy.CustomerName,
		CustomerPhone:   policy.CustomerPhone,
		Provider:        policy.Provider,
		PlanName:        policy.PlanName,
		Premium:         policy.Premium,
		ExpiryDate:      policy.ExpiryDate.UTC().Format(isoFormat),
		DaysUntilExpiry: policy.DaysUntilExpiry(now),
		Status:          policy.Status,
		RemindersSent:   reminders,
		RenewalQuoteID:  policy.RenewalQuoteID,
	}
}

// ToRenewalPolicyDTOs converts a slice of renewal policies
func ToRenewalPolicyDTOs(policies []domain.RenewalPolicy, now time.Time) []domain.RenewalPolicyDTO {
	dtos := make([]domain.RenewalPolicyDTO, len(policies))
	for i := range policies {
		dtos[i] = ToRenewalPolicyDTO(&policies[i], now)
	}
	return dtos
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		QuoteID:   n.QuoteID,
		Read:      n.Read,
		ReadAt:    formatTimePtr(n.ReadAt),
		CreatedAt: n.CreatedAt.UTC().Format(isoFormat),
	}
}

// ToNotificationDTOs converts a slice of notifications
func ToNotificationDTOs(notifications []domain.Notification) []domain.NotificationDTO {
	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = ToNotificationDTO(&notifications[i])
	}
	return dtos
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(isoFormat)
	return &s
}
