package source

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkarger/signalbridge/internal/event"
)

// SourcePayments is the origin tag for the payment-processor webhook.
const SourcePayments = "payments-webhook"

// classification pairs the severity and kind a webhook type maps to.
type classification struct {
	severity event.Severity
	kind     event.Kind
}

// paymentTypes is the closed set of webhook event types this adapter
// recognizes. Anything else is dropped with ErrUnrecognizedType rather
// than promoted to a generic event.
var paymentTypes = map[string]classification{
	"payout.failed":                 {event.SeverityCritical, event.KindPayment},
	"charge.dispute.created":        {event.SeverityCritical, event.KindPayment},
	"payment_intent.payment_failed": {event.SeverityWarning, event.KindPayment},
	"invoice.payment_failed":        {event.SeverityWarning, event.KindPayment},
	"charge.refunded":               {event.SeverityInfo, event.KindPayment},
	"payout.paid":                   {event.SeverityInfo, event.KindPayment},
}

// paymentPayload is the vendor webhook envelope. Extra fields are ignored.
type paymentPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"` // unix seconds
	Data    struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentAdapter normalizes payment-processor webhook bodies. It assumes
// the body already passed signature verification upstream.
type PaymentAdapter struct{}

func NewPaymentAdapter() *PaymentAdapter { return &PaymentAdapter{} }

func (a *PaymentAdapter) Source() string { return SourcePayments }

func (a *PaymentAdapter) Normalize(raw []byte) (*Result, error) {
	var p paymentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalid(SourcePayments, "body", "not valid JSON")
	}
	if p.Type == "" {
		return nil, invalid(SourcePayments, "type", "required")
	}
	cls, ok := paymentTypes[p.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedType, p.Type)
	}
	if p.ID == "" {
		return nil, invalid(SourcePayments, "id", "required")
	}
	if p.Created == 0 {
		return nil, invalid(SourcePayments, "created", "required")
	}
	if p.Data.Object.ID == "" {
		return nil, invalid(SourcePayments, "data.object.id", "required")
	}

	ev := &event.Normalized{
		EventID:   p.ID,
		Source:    SourcePayments,
		Kind:      cls.kind,
		Severity:  cls.severity,
		Service:   "payments",
		Summary:   fmt.Sprintf("%s: %s", p.Type, p.Data.Object.ID),
		StartedAt: time.Unix(p.Created, 0).UTC(),
		// Webhook events are point-in-time; they never resolve.
		ResolvedAt: nil,
		Raw:        json.RawMessage(raw),
	}
	return &Result{Events: []*event.Normalized{ev}}, nil
}
