package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// QuoteStatus represents where a quote sits in its lifecycle
type QuoteStatus string

const (
	QuoteStatusDraft            QuoteStatus = "draft"
	QuoteStatusPendingApproval  QuoteStatus = "pending_approval"
	QuoteStatusApprovalGranted  QuoteStatus = "approval_granted"
	QuoteStatusApprovalRejected QuoteStatus = "approval_rejected"
	QuoteStatusLinkSent         QuoteStatus = "link_sent"
	QuoteStatusLinkClicked      QuoteStatus = "link_clicked"
	QuoteStatusDocsUploaded     QuoteStatus = "docs_uploaded"
	QuoteStatusPaymentPending   QuoteStatus = "payment_pending"
	QuoteStatusIssued           QuoteStatus = "issued"
	QuoteStatusExpiring         QuoteStatus = "expiring"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusPendingApproval, QuoteStatusApprovalGranted,
		QuoteStatusApprovalRejected, QuoteStatusLinkSent, QuoteStatusLinkClicked,
		QuoteStatusDocsUploaded, QuoteStatusPaymentPending, QuoteStatusIssued,
		QuoteStatusExpiring:
		return true
	}
	return false
}

// QuoteSource identifies where a quote originated. Never changes after creation.
type QuoteSource string

const (
	QuoteSourceAgentPortal    QuoteSource = "agent_portal"
	QuoteSourceCustomerPortal QuoteSource = "customer_portal"
)

// IsValid checks if the QuoteSource is a valid enum value
func (s QuoteSource) IsValid() bool {
	return s == QuoteSourceAgentPortal || s == QuoteSourceCustomerPortal
}

// CustomerDetails is the embedded customer payload on a quote
type CustomerDetails struct {
	CPR            string `json:"cpr"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CreditEligible bool   `json:"creditEligible"`
	CreditScore    int    `json:"creditScore"`
}

// FullName returns the customer's display name
func (c *CustomerDetails) FullName() string {
	return c.FirstName + " " + c.LastName
}

// VehicleDetails is the embedded vehicle payload on a motor quote
type VehicleDetails struct {
	PlateNumber   string  `json:"plateNumber"`
	ChassisNumber string  `json:"chassisNumber"`
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	InsuredValue  float64 `json:"insuredValue"`
	IsModified    bool    `json:"isModified"`
	IsGCCSpec     bool    `json:"isGccSpec"`
}

// TravelCriteria is the optional travel payload on a travel quote
type TravelCriteria struct {
	Destination    string    `json:"destination"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	TravellerCount int       `json:"travellerCount"`
}

// RiskFactors feed pricing and determine whether credit approval is required
type RiskFactors struct {
	AgeUnder24        bool `json:"ageUnder24"`
	LicenseUnder1Year bool `json:"licenseUnder1Year"`
}

// AssignmentStatus represents the state of a pool assignment
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusClaimed   AssignmentStatus = "claimed"
	AssignmentStatusRejected  AssignmentStatus = "rejected"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// IsValid checks if the AssignmentStatus is a valid enum value
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusClaimed,
		AssignmentStatusRejected, AssignmentStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the assignment can no longer change state
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusRejected || s == AssignmentStatusCompleted
}

// RejectionReason is the closed set of reasons an agent can give when
// rejecting an assigned quote
type RejectionReason string

const (
	RejectionCustomerUnreachable     RejectionReason = "customer_unreachable"
	RejectionCustomerNotInterested   RejectionReason = "customer_not_interested"
	RejectionDuplicateQuote          RejectionReason = "duplicate_quote"
	RejectionInvalidContactDetails   RejectionReason = "invalid_contact_details"
	RejectionPriceTooHigh            RejectionReason = "price_too_high"
	RejectionIneligibleCustomer      RejectionReason = "ineligible_customer"
	RejectionIncorrectVehicleDetails RejectionReason = "incorrect_vehicle_details"
	RejectionCoverageNotOffered      RejectionReason = "coverage_not_offered"
	RejectionAlreadyInsured          RejectionReason = "already_insured"
	RejectionRequestedByCustomer     RejectionReason = "requested_by_customer"
	RejectionOther                   RejectionReason = "other"
)

// IsValid checks if the RejectionReason is a valid enum value
func (r RejectionReason) IsValid() bool {
	switch r {
	case RejectionCustomerUnreachable, RejectionCustomerNotInterested,
		RejectionDuplicateQuote, RejectionInvalidContactDetails,
		RejectionPriceTooHigh, RejectionIneligibleCustomer,
		RejectionIncorrectVehicleDetails, RejectionCoverageNotOffered,
		RejectionAlreadyInsured, RejectionRequestedByCustomer, RejectionOther:
		return true
	}
	return false
}

// Urgency classifies how long an assignment has sat unworked.
// Derived from assignedAt on every read, never persisted.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencySoon   Urgency = "soon"
	UrgencyUrgent Urgency = "urgent"
)

// ClassifyUrgency buckets an assignment by hours since it was assigned.
// Boundaries are strict: exactly 24h is soon, exactly 12h is normal.
func ClassifyUrgency(assignedAt, now time.Time) Urgency {
	hours := now.Sub(assignedAt).Hours()
	switch {
	case hours > 24:
		return UrgencyUrgent
	case hours > 12:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// AgentNote is a free-form note on an assignment. Notes are append-only.
type AgentNote struct {
	ID         uuid.UUID  `json:"id"`
	Text       string     `json:"text"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Reminder   bool       `json:"reminder"`
	ReminderAt *time.Time `json:"reminderAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// QuoteAssignment records which agent currently owns working a quote.
// A quote has at most one live assignment; superseded assignments survive
// only in the assignment history.
type QuoteAssignment struct {
	AssignedToAgentID   string           `json:"assignedToAgentId"`
	AssignedToAgentName string           `json:"assignedToAgentName"`
	AssignedByAgentID   string           `json:"assignedByAgentId"`
	AssignedByAgentName string           `json:"assignedByAgentName"`
	AssignedAt          time.Time        `json:"assignedAt"`
	Status              AssignmentStatus `json:"status"`
	ClaimedAt           *time.Time       `json:"claimedAt,omitempty"`
	RejectedAt          *time.Time       `json:"rejectedAt,omitempty"`
	CompletedAt         *time.Time       `json:"completedAt,omitempty"`
	RejectionReason     RejectionReason  `json:"rejectionReason,omitempty"`
	RejectionNote       string           `json:"rejectionNote,omitempty"`
	AgentNotes          []AgentNote      `json:"agentNotes,omitempty"`
}

// AssignmentAction is the action recorded in an assignment history entry
type AssignmentAction string

const (
	AssignmentActionAssigned  AssignmentAction = "assigned"
	AssignmentActionClaimed   AssignmentAction = "claimed"
	AssignmentActionEdited    AssignmentAction = "edited"
	AssignmentActionRejected  AssignmentAction = "rejected"
	AssignmentActionCompleted AssignmentAction = "completed"
)

// AssignmentHistoryEntry is an immutable record of an assignment change.
// Entries are append-only: never reordered, never edited.
type AssignmentHistoryEntry struct {
	ID              uuid.UUID        `json:"id"`
	Timestamp       time.Time        `json:"timestamp"`
	Action          AssignmentAction `json:"action"`
	PerformedBy     string           `json:"performedBy"`
	PerformedByName string           `json:"performedByName"`
	Details         string           `json:"details"`
}

// Quote is the central entity: one insurance request moving through the
// lifecycle state machine. Value objects persist as JSON document columns;
// fields the pool queries filter on stay as scalar columns.
type Quote struct {
	ID                uuid.UUID                `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuoteReference    string                   `gorm:"type:varchar(50);index;column:quote_reference" json:"quoteReference"`
	Status            QuoteStatus              `gorm:"type:varchar(50);not null;default:'draft';index" json:"status"`
	Source            QuoteSource              `gorm:"type:varchar(50);not null" json:"source"`
	Customer          CustomerDetails          `gorm:"serializer:json;type:jsonb" json:"customer"`
	Vehicle           VehicleDetails           `gorm:"serializer:json" json:"vehicle"`
	TravelCriteria    *TravelCriteria          `gorm:"serializer:json;column:travel_criteria" json:"travelCriteria,omitempty"`
	RiskFactors       RiskFactors              `gorm:"serializer:json;column:risk_factors" json:"riskFactors"`
	SelectedPlanID    string                   `gorm:"type:varchar(100);column:selected_plan_id" json:"selectedPlanId,omitempty"`
	Provider          string                   `gorm:"type:varchar(200)" json:"provider,omitempty"`
	PlanName          string                   `gorm:"type:varchar(200);column:plan_name" json:"planName,omitempty"`
	Premium           float64                  `gorm:"type:decimal(15,2);not null;default:0" json:"premium"`
	DiscountCode      string                   `gorm:"type:varchar(20);column:discount_code" json:"discountCode,omitempty"`
	Assignment        *QuoteAssignment         `gorm:"serializer:json" json:"assignment,omitempty"`
	AssignmentStatus  *AssignmentStatus        `gorm:"type:varchar(50);column:assignment_status;index" json:"-"`
	AssignmentHistory []AssignmentHistoryEntry `gorm:"serializer:json;column:assignment_history" json:"assignmentHistory,omitempty"`
	ApprovalHandledAt *time.Time               `gorm:"column:approval_handled_at" json:"approvalHandledAt,omitempty"`
	AgentID           string                   `gorm:"type:varchar(100);index;column:agent_id" json:"agentId,omitempty"`
	AgentName         string                   `gorm:"type:varchar(200);column:agent_name" json:"agentName,omitempty"`
	Version           int64                    `gorm:"not null;default:1" json:"version"`
	CreatedAt         time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"createdAt"`
	UpdatedAt         time.Time                `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// ApprovalDecided reports whether credit control has acted on this quote and
// the decision still applies to the current risk configuration. Invalidation
// clears ApprovalHandledAt, so presence of the timestamp is the signal.
func (q *Quote) ApprovalDecided() bool {
	return q.ApprovalHandledAt != nil
}

// RequiresApproval reports whether the quote's risk configuration needs a
// credit control decision before a payment link can go out.
func (q *Quote) RequiresApproval() bool {
	return q.RiskFactors.AgeUnder24 || q.RiskFactors.LicenseUnder1Year ||
		q.Vehicle.IsModified || q.Vehicle.InsuredValue > HighValueThreshold
}

// HighValueThreshold is the insured value (BHD) above which a quote needs
// credit control approval.
const HighValueThreshold = 30000

// SyncAssignmentStatus keeps the queryable assignment_status column in step
// with the embedded assignment document. Must be called before every write.
func (q *Quote) SyncAssignmentStatus() {
	if q.Assignment == nil {
		q.AssignmentStatus = nil
		return
	}
	s := q.Assignment.Status
	q.AssignmentStatus = &s
}

// AuditAction tags an audit log entry
type AuditAction string

const (
	AuditActionQuoteCreated     AuditAction = "QUOTE_CREATED"
	AuditActionQuoteUpdated     AuditAction = "QUOTE_UPDATED"
	AuditActionExceptionRequest AuditAction = "EXCEPTION_REQUEST"
	AuditActionApprovalGranted  AuditAction = "APPROVAL_GRANTED"
	AuditActionApprovalRejected AuditAction = "APPROVAL_REJECTED"
	AuditActionApprovalVoided   AuditAction = "APPROVAL_VOIDED"
	AuditActionLinkSent         AuditAction = "LINK_SENT"
	AuditActionLinkClicked      AuditAction = "LINK_CLICKED"
	AuditActionDocsUploaded     AuditAction = "DOCS_UPLOADED"
	AuditActionPaymentPending   AuditAction = "PAYMENT_PENDING"
	AuditActionIssued           AuditAction = "ISSUED"
	AuditActionExpiring         AuditAction = "EXPIRING"
	AuditActionAssigned         AuditAction = "ASSIGNED"
	AuditActionClaimed          AuditAction = "CLAIMED"
	AuditActionAssignRejected   AuditAction = "ASSIGNMENT_REJECTED"
	AuditActionAssignCompleted  AuditAction = "ASSIGNMENT_COMPLETED"
	AuditActionNoteAdded        AuditAction = "NOTE_ADDED"
	AuditActionDiscountApplied  AuditAction = "DISCOUNT_APPLIED"
	AuditActionExport           AuditAction = "EXPORT"
)

// AuditLogEntry is an immutable audit record scoped to a quote.
// Stored in its own table, queried per quote and sorted newest-first.
type AuditLogEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuoteID   *uuid.UUID  `gorm:"type:uuid;index;column:quote_id" json:"quoteId,omitempty"`
	Timestamp time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"timestamp"`
	UserID    string      `gorm:"type:varchar(100);column:user_id" json:"userId"`
	UserName  string      `gorm:"type:varchar(200);column:user_name" json:"userName"`
	Action    AuditAction `gorm:"type:varchar(50);not null" json:"action"`
	Details   string      `gorm:"type:text" json:"details"`
}

// TableName overrides the default table name
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// RenewalStatus represents where a policy sits in the renewal pipeline
type RenewalStatus string

const (
	RenewalStatusPending           RenewalStatus = "pending"
	RenewalStatusReminder30Sent    RenewalStatus = "reminder_30_sent"
	RenewalStatusReminder15Sent    RenewalStatus = "reminder_15_sent"
	RenewalStatusExpiredUnactioned RenewalStatus = "expired_unactioned"
	RenewalStatusAssignedToPool    RenewalStatus = "assigned_to_pool"
	RenewalStatusRenewed           RenewalStatus = "renewed"
	RenewalStatusCustomerDeclined  RenewalStatus = "customer_declined"
)

// IsValid checks if the RenewalStatus is a valid enum value
func (s RenewalStatus) IsValid() bool {
	switch s {
	case RenewalStatusPending, RenewalStatusReminder30Sent, RenewalStatusReminder15Sent,
		RenewalStatusExpiredUnactioned, RenewalStatusAssignedToPool,
		RenewalStatusRenewed, RenewalStatusCustomerDeclined:
		return true
	}
	return false
}

// ReminderType identifies which expiry threshold a reminder covered
type ReminderType string

const (
	Reminder30Day ReminderType = "30_day"
	Reminder15Day ReminderType = "15_day"
)

// RenewalPolicy is an in-force policy tracked for renewal.
// RemindersSent is the idempotency record: one entry per threshold crossed.
type RenewalPolicy struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PolicyNumber   string         `gorm:"type:varchar(50);not null;uniqueIndex;column:policy_number" json:"policyNumber"`
	QuoteID        *uuid.UUID     `gorm:"type:uuid;column:quote_id" json:"quoteId,omitempty"`
	CustomerName   string         `gorm:"type:varchar(200);column:customer_name" json:"customerName"`
	CustomerPhone  string         `gorm:"type:varchar(50);column:customer_phone" json:"customerPhone"`
	Provider       string         `gorm:"type:varchar(200)" json:"provider"`
	PlanName       string         `gorm:"type:varchar(200);column:plan_name" json:"planName"`
	Premium        float64        `gorm:"type:decimal(15,2);not null;default:0" json:"premium"`
	ExpiryDate     time.Time      `gorm:"not null;index;column:expiry_date" json:"expiryDate"`
	Status         RenewalStatus  `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	RemindersSent  pq.StringArray `gorm:"type:text[];column:reminders_sent" json:"remindersSent"`
	RenewalQuoteID *uuid.UUID     `gorm:"type:uuid;column:renewal_quote_id" json:"renewalQuoteId,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// DaysUntilExpiry computes whole days between now and the expiry date.
// Negative once the policy has lapsed.
func (p *RenewalPolicy) DaysUntilExpiry(now time.Time) int {
	return int(p.ExpiryDate.Sub(now).Hours() / 24)
}

// HasReminder reports whether a reminder of the given type was already sent
func (p *RenewalPolicy) HasReminder(t ReminderType) bool {
	for _, r := range p.RemindersSent {
		if r == string(t) {
			return true
		}
	}
	return false
}

// DiscountTier is the percentage band of a staff discount code
type DiscountTier int

const (
	DiscountTier15 DiscountTier = 15
	DiscountTier10 DiscountTier = 10
	DiscountTier5  DiscountTier = 5
)

// AllocationPerYear is the fixed number of codes per tier each staff member
// receives per calendar year.
var AllocationPerYear = map[DiscountTier]int{
	DiscountTier15: 1,
	DiscountTier10: 3,
	DiscountTier5:  3,
}

// DiscountCode is a single-use staff referral code
type StaffDiscountCode struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code           string       `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	StaffID        string       `gorm:"type:varchar(100);not null;index;column:staff_id" json:"staffId"`
	StaffName      string       `gorm:"type:varchar(200);column:staff_name" json:"staffName"`
	Tier           DiscountTier `gorm:"not null" json:"tier"`
	AllocationYear int          `gorm:"not null;index;column:allocation_year" json:"allocationYear"`
	IsUsed         bool         `gorm:"not null;default:false;column:is_used" json:"isUsed"`
	UsedAt         *time.Time   `gorm:"column:used_at" json:"usedAt,omitempty"`
	UsedByAgentID  string       `gorm:"type:varchar(100);column:used_by_agent_id" json:"usedByAgentId,omitempty"`
	UsedOnQuoteID  *uuid.UUID   `gorm:"type:uuid;column:used_on_quote_id" json:"usedOnQuoteId,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName overrides the default table name
func (StaffDiscountCode) TableName() string {
	return "staff_discount_codes"
}

// UserRoleType represents a role a user can hold
type UserRoleType string

const (
	RoleDeveloper     UserRoleType = "developer"
	RoleSupervisor    UserRoleType = "supervisor"
	RoleCreditControl UserRoleType = "credit_control"
	RoleJuniorAgent   UserRoleType = "junior_agent"
)

// rolePrecedence orders roles from highest to lowest priority. A multi-role
// user's session runs as the highest-priority role they hold.
var rolePrecedence = []UserRoleType{
	RoleDeveloper,
	RoleSupervisor,
	RoleCreditControl,
	RoleJuniorAgent,
}

// ResolveActiveRole picks the highest-precedence role from a user's role
// list. Falls back to junior_agent when the list is empty or unrecognized.
func ResolveActiveRole(roles []UserRoleType) UserRoleType {
	for _, candidate := range rolePrecedence {
		for _, r := range roles {
			if r == candidate {
				return candidate
			}
		}
	}
	return RoleJuniorAgent
}

// RoleAtLeast reports whether role meets or exceeds required in the
// precedence order.
func RoleAtLeast(role, required UserRoleType) bool {
	return roleRank(role) <= roleRank(required)
}

func roleRank(r UserRoleType) int {
	for i, c := range rolePrecedence {
		if c == r {
			return i
		}
	}
	return len(rolePrecedence)
}

// User represents an agent or staff member
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username     string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	PasswordHash string         `gorm:"type:varchar(200);not null;column:password_hash" json:"-"`
	DisplayName  string         `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Email        string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Roles        pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive     bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// RoleTypes converts the stored role strings into typed roles
func (u *User) RoleTypes() []UserRoleType {
	roles := make([]UserRoleType, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, UserRoleType(r))
	}
	return roles
}

// ActiveRole resolves the user's effective role by precedence
func (u *User) ActiveRole() UserRoleType {
	return ResolveActiveRole(u.RoleTypes())
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeApprovalGranted  NotificationType = "approval_granted"
	NotificationTypeApprovalRejected NotificationType = "approval_rejected"
	NotificationTypeQuoteAssigned    NotificationType = "quote_assigned"
	NotificationTypeRenewalDue       NotificationType = "renewal_due"
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    string           `gorm:"type:varchar(100);not null;index;column:user_id" json:"userId"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title     string           `gorm:"type:varchar(200);not null" json:"title"`
	Message   string           `gorm:"type:varchar(500);not null" json:"message"`
	QuoteID   *uuid.UUID       `gorm:"type:uuid;column:quote_id" json:"quoteId,omitempty"`
	Read      bool             `gorm:"column:read;not null;default:false;index" json:"read"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// QuoteDocument is an uploaded customer document tied to a quote. The blob
// itself lives in object storage; this row is the metadata.
type QuoteDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id" json:"quoteId"`
	FileName    string    `gorm:"type:varchar(255);not null;column:file_name" json:"fileName"`
	ContentType string    `gorm:"type:varchar(100);column:content_type" json:"contentType"`
	SizeBytes   int64     `gorm:"column:size_bytes" json:"sizeBytes"`
	BlobPath    string    `gorm:"type:varchar(500);not null;column:blob_path" json:"blobPath"`
	UploadedBy  string    `gorm:"type:varchar(100);column:uploaded_by" json:"uploadedBy"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}
