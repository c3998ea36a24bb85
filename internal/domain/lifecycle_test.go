package domain_test

import (
	"testing"

	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_ValidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.QuoteStatus
		event domain.LifecycleEvent
		want  domain.QuoteStatus
	}{
		{"request exception from draft", domain.QuoteStatusDraft, domain.EventRequestException, domain.QuoteStatusPendingApproval},
		{"grant approval", domain.QuoteStatusPendingApproval, domain.EventGrantApproval, domain.QuoteStatusApprovalGranted},
		{"reject approval", domain.QuoteStatusPendingApproval, domain.EventRejectApproval, domain.QuoteStatusApprovalRejected},
		{"send link from draft", domain.QuoteStatusDraft, domain.EventSendPaymentLink, domain.QuoteStatusLinkSent},
		{"send link after approval", domain.QuoteStatusApprovalGranted, domain.EventSendPaymentLink, domain.QuoteStatusLinkSent},
		{"direct payment from draft", domain.QuoteStatusDraft, domain.EventInitiatePayment, domain.QuoteStatusPaymentPending},
		{"direct payment after approval", domain.QuoteStatusApprovalGranted, domain.EventInitiatePayment, domain.QuoteStatusPaymentPending},
		{"link clicked", domain.QuoteStatusLinkSent, domain.EventLinkClicked, domain.QuoteStatusLinkClicked},
		{"docs uploaded", domain.QuoteStatusLinkClicked, domain.EventDocsUploaded, domain.QuoteStatusDocsUploaded},
		{"payment started", domain.QuoteStatusDocsUploaded, domain.EventPaymentStarted, domain.QuoteStatusPaymentPending},
		{"payment confirmed", domain.QuoteStatusPaymentPending, domain.EventConfirmPayment, domain.QuoteStatusIssued},
		{"expiry approaching", domain.QuoteStatusIssued, domain.EventExpiryApproaching, domain.QuoteStatusExpiring},
		{"risk edit voids pending approval", domain.QuoteStatusPendingApproval, domain.EventRiskDetailsChanged, domain.QuoteStatusDraft},
		{"risk edit voids granted approval", domain.QuoteStatusApprovalGranted, domain.EventRiskDetailsChanged, domain.QuoteStatusDraft},
		{"risk edit resets rejected approval", domain.QuoteStatusApprovalRejected, domain.EventRiskDetailsChanged, domain.QuoteStatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NextStatus(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, domain.CanApply(tt.from, tt.event))
		})
	}
}

func TestNextStatus_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  domain.QuoteStatus
		event domain.LifecycleEvent
	}{
		{"cannot confirm payment from draft", domain.QuoteStatusDraft, domain.EventConfirmPayment},
		{"cannot send link while pending approval", domain.QuoteStatusPendingApproval, domain.EventSendPaymentLink},
		{"cannot send link after rejection", domain.QuoteStatusApprovalRejected, domain.EventSendPaymentLink},
		{"cannot initiate payment after rejection", domain.QuoteStatusApprovalRejected, domain.EventInitiatePayment},
		{"cannot re-request exception while pending", domain.QuoteStatusPendingApproval, domain.EventRequestException},
		{"cannot approve an issued quote", domain.QuoteStatusIssued, domain.EventGrantApproval},
		{"cannot click link before it is sent", domain.QuoteStatusDraft, domain.EventLinkClicked},
		{"issued quote is final for payment", domain.QuoteStatusIssued, domain.EventConfirmPayment},
		{"risk edit is a no-op outside approval flow", domain.QuoteStatusDraft, domain.EventRiskDetailsChanged},
		{"expiring cannot expire again", domain.QuoteStatusExpiring, domain.EventExpiryApproaching},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NextStatus(tt.from, tt.event)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			assert.False(t, domain.CanApply(tt.from, tt.event))
		})
	}
}

func TestApplyEvent(t *testing.T) {
	t.Run("advances status on legal event", func(t *testing.T) {
		q := &domain.Quote{Status: domain.QuoteStatusDraft}

		err := q.ApplyEvent(domain.EventSendPaymentLink)

		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusLinkSent, q.Status)
	})

	t.Run("leaves status untouched on illegal event", func(t *testing.T) {
		q := &domain.Quote{Status: domain.QuoteStatusLinkSent}

		err := q.ApplyEvent(domain.EventConfirmPayment)

		require.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.QuoteStatusLinkSent, q.Status)
	})
}

func TestInApprovalFlow(t *testing.T) {
	assert.True(t, domain.QuoteStatusPendingApproval.InApprovalFlow())
	assert.True(t, domain.QuoteStatusApprovalGranted.InApprovalFlow())
	assert.True(t, domain.QuoteStatusApprovalRejected.InApprovalFlow())

	assert.False(t, domain.QuoteStatusDraft.InApprovalFlow())
	assert.False(t, domain.QuoteStatusLinkSent.InApprovalFlow())
	assert.False(t, domain.QuoteStatusIssued.InApprovalFlow())
}

func TestRiskDetailsChanged(t *testing.T) {
	base := func() *domain.Quote {
		return &domain.Quote{
			Vehicle: domain.VehicleDetails{
				Make:         "Toyota",
				Model:        "Camry",
				InsuredValue: 12000,
			},
			RiskFactors: domain.RiskFactors{},
		}
	}

	t.Run("unchanged quote", func(t *testing.T) {
		assert.False(t, domain.RiskDetailsChanged(base(), base()))
	})

	t.Run("insured value change", func(t *testing.T) {
		updated := base()
		updated.Vehicle.InsuredValue = 15000
		assert.True(t, domain.RiskDetailsChanged(base(), updated))
	})

	t.Run("make change", func(t *testing.T) {
		updated := base()
		updated.Vehicle.Make = "Nissan"
		assert.True(t, domain.RiskDetailsChanged(base(), updated))
	})

	t.Run("model change", func(t *testing.T) {
		updated := base()
		updated.Vehicle.Model = "Corolla"
		assert.True(t, domain.RiskDetailsChanged(base(), updated))
	})

	t.Run("age flag change", func(t *testing.T) {
		updated := base()
		updated.RiskFactors.AgeUnder24 = true
		assert.True(t, domain.RiskDetailsChanged(base(), updated))
	})

	t.Run("license flag change", func(t *testing.T) {
		updated := base()
		updated.RiskFactors.LicenseUnder1Year = true
		assert.True(t, domain.RiskDetailsChanged(base(), updated))
	})

	t.Run("non-risk edit does not count", func(t *testing.T) {
		updated := base()
		updated.Premium = 200
		updated.Customer.Phone = "+97336009999"
		updated.Vehicle.PlateNumber = "123456"
		assert.False(t, domain.RiskDetailsChanged(base(), updated))
	})
}

func TestRequiresApproval(t *testing.T) {
	tests := []struct {
		name  string
		quote domain.Quote
		want  bool
	}{
		{"plain quote", domain.Quote{Vehicle: domain.VehicleDetails{InsuredValue: 10000}}, false},
		{"driver under 24", domain.Quote{RiskFactors: domain.RiskFactors{AgeUnder24: true}}, true},
		{"license under a year", domain.Quote{RiskFactors: domain.RiskFactors{LicenseUnder1Year: true}}, true},
		{"modified vehicle", domain.Quote{Vehicle: domain.VehicleDetails{IsModified: true}}, true},
		{"above value threshold", domain.Quote{Vehicle: domain.VehicleDetails{InsuredValue: 30001}}, true},
		{"exactly at threshold", domain.Quote{Vehicle: domain.VehicleDetails{InsuredValue: 30000}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.quote.RequiresApproval())
		})
	}
}
