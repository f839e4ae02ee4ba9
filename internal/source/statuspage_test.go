package source

import (
	"fmt"
	"testing"

	"github.com/dkarger/signalbridge/internal/event"
)

const testPage = "statuspage-cloud"

func incidentDoc(impact string) []byte {
	return []byte(fmt.Sprintf(`{
		"incidents": [{
			"id": "inc_1",
			"name": "API errors",
			"status": "investigating",
			"impact": %q,
			"created_at": "2025-06-01T09:00:00Z",
			"updated_at": "2025-06-01T09:30:00Z",
			"resolved_at": null,
			"shortlink": "https://example.com/inc_1"
		}],
		"components": []
	}`, impact))
}

func componentDoc(status string) []byte {
	return []byte(fmt.Sprintf(`{
		"incidents": [],
		"components": [{
			"id": "cmp_api",
			"name": "Public API",
			"status": %q,
			"updated_at": "2025-06-01T09:00:00Z",
			"position": 1
		}]
	}`, status))
}

func TestIncidentImpactMapping(t *testing.T) {
	cases := []struct {
		impact string
		want   event.Severity
	}{
		{"critical", event.SeverityCritical},
		{"major", event.SeverityCritical},
		{"minor", event.SeverityWarning},
		{"none", event.SeverityInfo},
		{"maintenance", event.SeverityInfo},
	}

	a := NewStatusPageAdapter(testPage)
	for _, tc := range cases {
		t.Run(tc.impact, func(t *testing.T) {
			res, err := a.Normalize(incidentDoc(tc.impact))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if len(res.Events) != 1 {
				t.Fatalf("got %d events, want 1", len(res.Events))
			}
			ev := res.Events[0]
			if ev.Severity != tc.want {
				t.Errorf("severity = %q, want %q", ev.Severity, tc.want)
			}
			if !ev.Severity.Valid() {
				t.Errorf("severity %q outside the known set", ev.Severity)
			}
			if ev.Kind != event.KindIncident {
				t.Errorf("kind = %q, want incident", ev.Kind)
			}
			if ev.EventID != "inc_1" {
				t.Errorf("event_id = %q, want inc_1", ev.EventID)
			}
			if ev.Source != testPage {
				t.Errorf("source = %q, want %q", ev.Source, testPage)
			}
		})
	}
}

func TestIncidentResolvedAtCopied(t *testing.T) {
	doc := []byte(`{
		"incidents": [{
			"id": "inc_2",
			"name": "DB maintenance",
			"status": "completed",
			"impact": "maintenance",
			"created_at": "2025-05-30T22:00:00Z",
			"updated_at": "2025-05-31T02:00:00Z",
			"resolved_at": "2025-05-31T02:00:00Z"
		}]
	}`)
	a := NewStatusPageAdapter(testPage)
	res, err := a.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if res.Events[0].ResolvedAt == nil {
		t.Fatal("resolved_at = nil, want copied timestamp")
	}
}

func TestComponentStatusMapping(t *testing.T) {
	cases := []struct {
		status string
		want   event.Severity
	}{
		{"degraded_performance", event.SeverityWarning},
		{"partial_outage", event.SeverityCritical},
		{"major_outage", event.SeverityCritical},
	}

	a := NewStatusPageAdapter(testPage)
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			res, err := a.Normalize(componentDoc(tc.status))
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if len(res.Events) != 1 {
				t.Fatalf("got %d events, want 1", len(res.Events))
			}
			ev := res.Events[0]
			if ev.Severity != tc.want {
				t.Errorf("severity = %q, want %q", ev.Severity, tc.want)
			}
			if ev.Kind != event.KindStatus {
				t.Errorf("kind = %q, want status", ev.Kind)
			}
			wantID := "cmp_api:" + tc.status
			if ev.EventID != wantID {
				t.Errorf("event_id = %q, want %q", ev.EventID, wantID)
			}
		})
	}
}

func TestOperationalComponentProducesNoEvent(t *testing.T) {
	a := NewStatusPageAdapter(testPage)
	res, err := a.Normalize(componentDoc("operational"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(res.Events) != 0 {
		t.Fatalf("got %d events, want 0", len(res.Events))
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
}

func TestComponentEventIDStableAcrossPolls(t *testing.T) {
	a := NewStatusPageAdapter(testPage)
	first, err := a.Normalize(componentDoc("degraded_performance"))
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	second, err := a.Normalize(componentDoc("degraded_performance"))
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if first.Events[0].EventID != second.Events[0].EventID {
		t.Errorf("event_id changed across polls: %q vs %q",
			first.Events[0].EventID, second.Events[0].EventID)
	}

	// A status change while still degraded mints a new id and re-alerts.
	escalated, err := a.Normalize(componentDoc("major_outage"))
	if err != nil {
		t.Fatalf("escalated poll: %v", err)
	}
	if escalated.Events[0].EventID == first.Events[0].EventID {
		t.Error("status change kept the same event_id, want a new one")
	}
}

func TestStatusPageEntryValidation(t *testing.T) {
	cases := []struct {
		name string
		doc  []byte
	}{
		{"unknown impact", incidentDoc("apocalyptic")},
		{"unknown component status", componentDoc("on_fire")},
		{"missing incident id", []byte(`{"incidents":[{"name":"x","impact":"minor","created_at":"2025-06-01T09:00:00Z"}]}`)},
	}

	a := NewStatusPageAdapter(testPage)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := a.Normalize(tc.doc)
			if err != nil {
				t.Fatalf("whole document rejected: %v", err)
			}
			if len(res.Events) != 0 {
				t.Fatalf("got %d events, want 0", len(res.Events))
			}
			if len(res.Rejected) != 1 {
				t.Fatalf("rejected = %d, want 1", len(res.Rejected))
			}
		})
	}
}

func TestStatusPageMalformedDocument(t *testing.T) {
	a := NewStatusPageAdapter(testPage)
	if _, err := a.Normalize([]byte("<html>nope</html>")); err == nil {
		t.Fatal("want error for unparseable document")
	}
}

func TestStatusPageMixedDocument(t *testing.T) {
	doc := []byte(`{
		"page": {"name": "ignored extra"},
		"incidents": [
			{"id": "inc_a", "name": "A", "status": "investigating", "impact": "critical",
			 "created_at": "2025-06-01T09:00:00Z", "updated_at": "2025-06-01T09:05:00Z", "resolved_at": null},
			{"id": "inc_b", "name": "B", "status": "investigating", "impact": "galactic",
			 "created_at": "2025-06-01T09:00:00Z", "updated_at": "2025-06-01T09:05:00Z", "resolved_at": null}
		],
		"components": [
			{"id": "cmp_1", "name": "C1", "status": "operational", "updated_at": "2025-06-01T08:00:00Z"},
			{"id": "cmp_2", "name": "C2", "status": "partial_outage", "updated_at": "2025-06-01T08:00:00Z"}
		]
	}`)
	a := NewStatusPageAdapter(testPage)
	res, err := a.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(res.Events) != 2 {
		t.Errorf("events = %d, want 2 (one incident, one degraded component)", len(res.Events))
	}
	if len(res.Rejected) != 1 {
		t.Errorf("rejected = %d, want 1 (unknown impact aborts only that entry)", len(res.Rejected))
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (operational component)", res.Skipped)
	}
}
