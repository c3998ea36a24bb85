package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyUrgency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		assignedAt time.Time
		want       domain.Urgency
	}{
		{"just assigned", now, domain.UrgencyNormal},
		{"eleven hours", now.Add(-11 * time.Hour), domain.UrgencyNormal},
		{"exactly twelve hours", now.Add(-12 * time.Hour), domain.UrgencyNormal},
		{"thirteen hours", now.Add(-13 * time.Hour), domain.UrgencySoon},
		{"exactly twenty four hours", now.Add(-24 * time.Hour), domain.UrgencySoon},
		{"twenty five hours", now.Add(-25 * time.Hour), domain.UrgencyUrgent},
		{"three days", now.Add(-72 * time.Hour), domain.UrgencyUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyUrgency(tt.assignedAt, now))
		})
	}
}

func TestResolveActiveRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []domain.UserRoleType
		want  domain.UserRoleType
	}{
		{"single role", []domain.UserRoleType{domain.RoleJuniorAgent}, domain.RoleJuniorAgent},
		{"supervisor beats junior agent", []domain.UserRoleType{domain.RoleJuniorAgent, domain.RoleSupervisor}, domain.RoleSupervisor},
		{"developer beats everything", []domain.UserRoleType{domain.RoleSupervisor, domain.RoleDeveloper, domain.RoleCreditControl}, domain.RoleDeveloper},
		{"supervisor beats credit control", []domain.UserRoleType{domain.RoleCreditControl, domain.RoleSupervisor}, domain.RoleSupervisor},
		{"empty list falls back", nil, domain.RoleJuniorAgent},
		{"unknown roles fall back", []domain.UserRoleType{"intern"}, domain.RoleJuniorAgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ResolveActiveRole(tt.roles))
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, domain.RoleAtLeast(domain.RoleDeveloper, domain.RoleSupervisor))
	assert.True(t, domain.RoleAtLeast(domain.RoleSupervisor, domain.RoleSupervisor))
	assert.True(t, domain.RoleAtLeast(domain.RoleSupervisor, domain.RoleCreditControl))
	assert.True(t, domain.RoleAtLeast(domain.RoleCreditControl, domain.RoleJuniorAgent))

	assert.False(t, domain.RoleAtLeast(domain.RoleJuniorAgent, domain.RoleCreditControl))
	assert.False(t, domain.RoleAtLeast(domain.RoleCreditControl, domain.RoleSupervisor))
	assert.False(t, domain.RoleAtLeast("intern", domain.RoleJuniorAgent))
}

func TestUserActiveRole(t *testing.T) {
	user := &domain.User{Roles: pq.StringArray{"junior_agent", "credit_control"}}
	assert.Equal(t, domain.RoleCreditControl, user.ActiveRole())

	empty := &domain.User{}
	assert.Equal(t, domain.RoleJuniorAgent, empty.ActiveRole())
}

func TestSyncAssignmentStatus(t *testing.T) {
	q := &domain.Quote{}

	q.SyncAssignmentStatus()
	assert.Nil(t, q.AssignmentStatus)

	q.Assignment = &domain.QuoteAssignment{Status: domain.AssignmentStatusClaimed}
	q.SyncAssignmentStatus()
	if assert.NotNil(t, q.AssignmentStatus) {
		assert.Equal(t, domain.AssignmentStatusClaimed, *q.AssignmentStatus)
	}

	q.Assignment = nil
	q.SyncAssignmentStatus()
	assert.Nil(t, q.AssignmentStatus)
}

func TestAssignmentStatusIsTerminal(t *testing.T) {
	assert.True(t, domain.AssignmentStatusRejected.IsTerminal())
	assert.True(t, domain.AssignmentStatusCompleted.IsTerminal())
	assert.False(t, domain.AssignmentStatusAssigned.IsTerminal())
	assert.False(t, domain.AssignmentStatusClaimed.IsTerminal())
}

func TestRenewalPolicyDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	p := &domain.RenewalPolicy{ExpiryDate: now.AddDate(0, 0, 20)}
	assert.Equal(t, 20, p.DaysUntilExpiry(now))

	lapsed := &domain.RenewalPolicy{ExpiryDate: now.AddDate(0, 0, -3)}
	assert.Equal(t, -3, lapsed.DaysUntilExpiry(now))

	today := &domain.RenewalPolicy{ExpiryDate: now}
	assert.Equal(t, 0, today.DaysUntilExpiry(now))
}

func TestRenewalPolicyHasReminder(t *testing.T) {
	p := &domain.RenewalPolicy{RemindersSent: pq.StringArray{"30_day"}}

	assert.True(t, p.HasReminder(domain.Reminder30Day))
	assert.False(t, p.HasReminder(domain.Reminder15Day))

	fresh := &domain.RenewalPolicy{}
	assert.False(t, fresh.HasReminder(domain.Reminder30Day))
}

func TestApprovalDecided(t *testing.T) {
	q := &domain.Quote{}
	assert.False(t, q.ApprovalDecided())

	handled := time.Now().UTC()
	q.ApprovalHandledAt = &handled
	assert.True(t, q.ApprovalDecided())
}

func TestCustomerFullName(t *testing.T) {
	c := &domain.CustomerDetails{FirstName: "Fatima", LastName: "Hassan"}
	assert.Equal(t, "Fatima Hassan", c.FullName())
}

func TestRejectionReasonIsValid(t *testing.T) {
	assert.True(t, domain.RejectionCustomerUnreachable.IsValid())
	assert.True(t, domain.RejectionOther.IsValid())
	assert.False(t, domain.RejectionReason("changed_my_mind").IsValid())
	assert.False(t, domain.RejectionReason("").IsValid())
}

func TestNotificationQuoteLink(t *testing.T) {
	quoteID := uuid.New()
	n := &domain.Notification{
		UserID:  "agent-1",
		Type:    domain.NotificationTypeQuoteAssigned,
		QuoteID: &quoteID,
	}
	assert.Equal(t, quoteID, *n.QuoteID)
}
