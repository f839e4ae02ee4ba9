package source

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkarger/signalbridge/internal/event"
)

// impactSeverity maps a status-page incident impact to a severity.
var impactSeverity = map[string]event.Severity{
	"critical":    event.SeverityCritical,
	"major":       event.SeverityCritical,
	"minor":       event.SeverityWarning,
	"none":        event.SeverityInfo,
	"maintenance": event.SeverityInfo,
}

// componentSeverity maps a degraded component status to a severity.
// "operational" is deliberately absent: operational components are
// filtered, never normalized.
var componentSeverity = map[string]event.Severity{
	"degraded_performance": event.SeverityWarning,
	"partial_outage":       event.SeverityCritical,
	"major_outage":         event.SeverityCritical,
}

// statusDocument is the published snapshot shape. Extra vendor fields are
// ignored, not rejected.
type statusDocument struct {
	Incidents  []statusIncident  `json:"incidents"`
	Components []statusComponent `json:"components"`
}

type statusIncident struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Impact     string     `json:"impact"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

type statusComponent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusPageAdapter normalizes one vendor's status-page document into
// per-incident and per-component events. One instance is registered per
// configured page, under the page's name as source tag.
type StatusPageAdapter struct {
	source string
}

func NewStatusPageAdapter(source string) *StatusPageAdapter {
	return &StatusPageAdapter{source: source}
}

func (a *StatusPageAdapter) Source() string { return a.source }

// Normalize extracts events entry by entry. A malformed entry rejects only
// that entry; only an unparseable document rejects the whole payload.
func (a *StatusPageAdapter) Normalize(raw []byte) (*Result, error) {
	var doc statusDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, invalid(a.source, "document", "not valid JSON")
	}

	res := &Result{}
	for _, inc := range doc.Incidents {
		ev, err := a.normalizeIncident(inc, raw)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{EntryID: inc.ID, Reason: err.Error()})
			continue
		}
		res.Events = append(res.Events, ev)
	}
	for _, c := range doc.Components {
		if c.Status == "operational" {
			res.Skipped++
			continue
		}
		ev, err := a.normalizeComponent(c, raw)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{EntryID: c.ID, Reason: err.Error()})
			continue
		}
		res.Events = append(res.Events, ev)
	}
	return res, nil
}

func (a *StatusPageAdapter) normalizeIncident(inc statusIncident, raw []byte) (*event.Normalized, error) {
	if inc.ID == "" {
		return nil, invalid(a.source, "incidents[].id", "required")
	}
	if inc.Name == "" {
		return nil, invalid(a.source, "incidents[].name", "required")
	}
	sev, ok := impactSeverity[inc.Impact]
	if !ok {
		return nil, invalid(a.source, "incidents[].impact", fmt.Sprintf("unknown impact %q", inc.Impact))
	}
	if inc.CreatedAt.IsZero() {
		return nil, invalid(a.source, "incidents[].created_at", "required")
	}
	return &event.Normalized{
		EventID:    inc.ID,
		Source:     a.source,
		Kind:       event.KindIncident,
		Severity:   sev,
		Service:    inc.Name,
		Summary:    fmt.Sprintf("%s (%s)", inc.Name, inc.Status),
		StartedAt:  inc.CreatedAt.UTC(),
		ResolvedAt: inc.ResolvedAt,
		Raw:        json.RawMessage(raw),
	}, nil
}

func (a *StatusPageAdapter) normalizeComponent(c statusComponent, raw []byte) (*event.Normalized, error) {
	if c.ID == "" {
		return nil, invalid(a.source, "components[].id", "required")
	}
	if c.Name == "" {
		return nil, invalid(a.source, "components[].name", "required")
	}
	sev, ok := componentSeverity[c.Status]
	if !ok {
		return nil, invalid(a.source, "components[].status", fmt.Sprintf("unknown status %q", c.Status))
	}
	if c.UpdatedAt.IsZero() {
		return nil, invalid(a.source, "components[].updated_at", "required")
	}
	return &event.Normalized{
		// Component id + status keeps the id stable while the component sits
		// in the same degraded state across polls, so repeated polls dedupe.
		// A status change mints a new id and re-alerts.
		EventID:    fmt.Sprintf("%s:%s", c.ID, c.Status),
		Source:     a.source,
		Kind:       event.KindStatus,
		Severity:   sev,
		Service:    c.Name,
		Summary:    fmt.Sprintf("%s: %s", c.Name, c.Status),
		StartedAt:  c.UpdatedAt.UTC(),
		ResolvedAt: nil,
		Raw:        json.RawMessage(raw),
	}, nil
}
