package messaging

import (
	"context"
	"fmt"
)

// Message is one templated message to a single recipient
type Message struct {
	// To must be an E.164 phone number; use NormalizePhone before building
	// a Message from user-entered data.
	To       string
	Template string
	Params   map[string]string
}

// Sender delivers messages to customers. Implementations must return an
// error on failed delivery; callers decide whether a lost message is fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Template names used across the service
const (
	TemplatePaymentLink       = "payment_link"
	TemplateRenewalReminder30 = "renewal_reminder_30"
	TemplateRenewalReminder15 = "renewal_reminder_15"
)

// RenderPreview builds a human-readable rendering of a message for logs and
// the simulated sender. Not used for real delivery; the production gateway
// renders templates server-side.
func RenderPreview(msg Message) string {
	switch msg.Template {
	case TemplatePaymentLink:
		return fmt.Sprintf("Your %s quote %s is ready. Pay here: %s",
			msg.Params["provider"], msg.Params["reference"], msg.Params["link"])
	case TemplateRenewalReminder30:
		return fmt.Sprintf("Your policy %s expires on %s. Renew within 30 days to stay covered.",
			msg.Params["policy_number"], msg.Params["expiry_date"])
	case TemplateRenewalReminder15:
		return fmt.Sprintf("Reminder: policy %s expires on %s. Only 15 days left to renew.",
			msg.Params["policy_number"], msg.Params["expiry_date"])
	default:
		return fmt.Sprintf("template=%s params=%v", msg.Template, msg.Params)
	}
}
