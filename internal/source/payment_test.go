package source

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dkarger/signalbridge/internal/event"
)

func paymentBody(id, typ string, created int64, objectID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"created":%d,"data":{"object":{"id":%q,"amount":4200}},"livemode":true}`,
		id, typ, created, objectID))
}

func TestPaymentNormalize(t *testing.T) {
	cases := []struct {
		name         string
		typ          string
		wantSeverity event.Severity
		wantKind     event.Kind
	}{
		{"payout failed is critical", "payout.failed", event.SeverityCritical, event.KindPayment},
		{"dispute is critical", "charge.dispute.created", event.SeverityCritical, event.KindPayment},
		{"intent failure is warning", "payment_intent.payment_failed", event.SeverityWarning, event.KindPayment},
		{"invoice failure is warning", "invoice.payment_failed", event.SeverityWarning, event.KindPayment},
		{"refund is info", "charge.refunded", event.SeverityInfo, event.KindPayment},
	}

	a := NewPaymentAdapter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := a.Normalize(paymentBody("evt_1", tc.typ, 1717200000, "po_99"))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if len(res.Events) != 1 {
				t.Fatalf("got %d events, want 1", len(res.Events))
			}
			ev := res.Events[0]
			if ev.EventID != "evt_1" {
				t.Errorf("event_id = %q, want evt_1", ev.EventID)
			}
			if ev.Severity != tc.wantSeverity {
				t.Errorf("severity = %q, want %q", ev.Severity, tc.wantSeverity)
			}
			if !ev.Severity.Valid() {
				t.Errorf("severity %q outside the known set", ev.Severity)
			}
			if ev.Kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", ev.Kind, tc.wantKind)
			}
			if ev.ResolvedAt != nil {
				t.Errorf("resolved_at = %v, want nil", ev.ResolvedAt)
			}
			wantSummary := tc.typ + ": po_99"
			if ev.Summary != wantSummary {
				t.Errorf("summary = %q, want %q", ev.Summary, wantSummary)
			}
			wantStart := time.Unix(1717200000, 0).UTC()
			if !ev.StartedAt.Equal(wantStart) {
				t.Errorf("started_at = %v, want %v", ev.StartedAt, wantStart)
			}
			if len(ev.Raw) == 0 {
				t.Error("raw payload not retained")
			}
		})
	}
}

func TestPaymentUnrecognizedType(t *testing.T) {
	a := NewPaymentAdapter()
	_, err := a.Normalize(paymentBody("evt_2", "customer.created", 1717200000, "cus_1"))
	if !errors.Is(err, ErrUnrecognizedType) {
		t.Fatalf("err = %v, want ErrUnrecognizedType", err)
	}
}

func TestPaymentValidation(t *testing.T) {
	cases := []struct {
		name      string
		body      []byte
		wantField string
	}{
		{"not json", []byte("{nope"), "body"},
		{"missing type", []byte(`{"id":"evt_3","created":1717200000,"data":{"object":{"id":"po_1"}}}`), "type"},
		{"missing id", []byte(`{"type":"payout.failed","created":1717200000,"data":{"object":{"id":"po_1"}}}`), "id"},
		{"missing created", []byte(`{"id":"evt_3","type":"payout.failed","data":{"object":{"id":"po_1"}}}`), "created"},
		{"missing object id", []byte(`{"id":"evt_3","type":"payout.failed","created":1717200000,"data":{"object":{}}}`), "data.object.id"},
	}

	a := NewPaymentAdapter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Normalize(tc.body)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}
