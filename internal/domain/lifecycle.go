package domain

import "fmt"

// LifecycleEvent is something that happens to a quote and may move it to a
// new status. Every status change in the system goes through ApplyEvent;
// no caller assigns Quote.Status directly.
type LifecycleEvent string

const (
	EventRequestException   LifecycleEvent = "request_exception"
	EventGrantApproval      LifecycleEvent = "grant_approval"
	EventRejectApproval     LifecycleEvent = "reject_approval"
	EventSendPaymentLink    LifecycleEvent = "send_payment_link"
	EventInitiatePayment    LifecycleEvent = "initiate_payment"
	EventLinkClicked        LifecycleEvent = "link_clicked"
	EventDocsUploaded       LifecycleEvent = "docs_uploaded"
	EventPaymentStarted     LifecycleEvent = "payment_started"
	EventConfirmPayment     LifecycleEvent = "confirm_payment"
	EventExpiryApproaching  LifecycleEvent = "expiry_approaching"
	EventRiskDetailsChanged LifecycleEvent = "risk_details_changed"
)

type transitionKey struct {
	From  QuoteStatus
	Event LifecycleEvent
}

// transitions is the single source of truth for legal lifecycle moves.
// A (status, event) pair absent from this table is an illegal transition.
var transitions = map[transitionKey]QuoteStatus{
	// Installment exception flow: agent asks credit control to approve a
	// plan the customer is not natively eligible for. A rejected quote may
	// be resubmitted after its details change.
	{QuoteStatusDraft, EventRequestException}:         QuoteStatusPendingApproval,
	{QuoteStatusPendingApproval, EventGrantApproval}:  QuoteStatusApprovalGranted,
	{QuoteStatusPendingApproval, EventRejectApproval}: QuoteStatusApprovalRejected,

	// Payment link: allowed from draft (no approval needed) or once
	// approval is granted. Direct payment skips the link steps.
	{QuoteStatusDraft, EventSendPaymentLink}:           QuoteStatusLinkSent,
	{QuoteStatusApprovalGranted, EventSendPaymentLink}: QuoteStatusLinkSent,
	{QuoteStatusDraft, EventInitiatePayment}:           QuoteStatusPaymentPending,
	{QuoteStatusApprovalGranted, EventInitiatePayment}: QuoteStatusPaymentPending,

	// Customer-driven progression, reported by the customer portal or a
	// manual status poll.
	{QuoteStatusLinkSent, EventLinkClicked}:        QuoteStatusLinkClicked,
	{QuoteStatusLinkClicked, EventDocsUploaded}:    QuoteStatusDocsUploaded,
	{QuoteStatusDocsUploaded, EventPaymentStarted}: QuoteStatusPaymentPending,
	{QuoteStatusPaymentPending, EventConfirmPayment}: QuoteStatusIssued,

	{QuoteStatusIssued, EventExpiryApproaching}: QuoteStatusExpiring,

	// Approval invalidation: editing a risk-relevant field while the quote
	// sits anywhere in the approval flow voids the decision and drops the
	// quote back to draft. The caller must also clear ApprovalHandledAt.
	{QuoteStatusPendingApproval, EventRiskDetailsChanged}:  QuoteStatusDraft,
	{QuoteStatusApprovalGranted, EventRiskDetailsChanged}:  QuoteStatusDraft,
	{QuoteStatusApprovalRejected, EventRiskDetailsChanged}: QuoteStatusDraft,
}

// NextStatus looks up the target status for an event from the given status.
// Returns ErrInvalidTransition when the pair is not in the table.
func NextStatus(from QuoteStatus, event LifecycleEvent) (QuoteStatus, error) {
	next, ok := transitions[transitionKey{From: from, Event: event}]
	if !ok {
		return "", fmt.Errorf("%w: event %q not allowed from status %q",
			ErrInvalidTransition, event, from)
	}
	return next, nil
}

// CanApply reports whether the event is legal from the given status
func CanApply(from QuoteStatus, event LifecycleEvent) bool {
	_, ok := transitions[transitionKey{From: from, Event: event}]
	return ok
}

// ApplyEvent advances the quote's status for the event, or returns
// ErrInvalidTransition leaving the quote untouched.
func (q *Quote) ApplyEvent(event LifecycleEvent) error {
	next, err := NextStatus(q.Status, event)
	if err != nil {
		return err
	}
	q.Status = next
	return nil
}

// riskRelevant captures the fields whose change voids a pending or decided
// approval: they feed pricing and risk, so the decision no longer applies.
type riskRelevant struct {
	InsuredValue      float64
	Make              string
	Model             string
	AgeUnder24        bool
	LicenseUnder1Year bool
}

func riskFingerprint(q *Quote) riskRelevant {
	return riskRelevant{
		InsuredValue:      q.Vehicle.InsuredValue,
		Make:              q.Vehicle.Make,
		Model:             q.Vehicle.Model,
		AgeUnder24:        q.RiskFactors.AgeUnder24,
		LicenseUnder1Year: q.RiskFactors.LicenseUnder1Year,
	}
}

// RiskDetailsChanged reports whether an edit from old to new touched any
// approval-relevant field.
func RiskDetailsChanged(old, updated *Quote) bool {
	return riskFingerprint(old) != riskFingerprint(updated)
}

// InApprovalFlow reports whether the status is one where an edit to risk
// details must invalidate the approval.
func (s QuoteStatus) InApprovalFlow() bool {
	return s == QuoteStatusPendingApproval ||
		s == QuoteStatusApprovalGranted ||
		s == QuoteStatusApprovalRejected
}
