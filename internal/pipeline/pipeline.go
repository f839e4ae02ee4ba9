package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkarger/signalbridge/internal/event"
	"github.com/dkarger/signalbridge/internal/metrics"
	"github.com/dkarger/signalbridge/internal/routing"
	"github.com/dkarger/signalbridge/internal/source"
	"github.com/dkarger/signalbridge/internal/store"
)

// Outcome classifies what happened to one normalized event.
type Outcome string

const (
	OutcomeStored    Outcome = "stored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// EventReport is the per-event result within a Report.
type EventReport struct {
	EventID     string   `json:"event_id"`
	Outcome     Outcome  `json:"outcome"`
	Routed      bool     `json:"routed"`
	DeliveredTo []string `json:"delivered_to"`
}

// Report aggregates one Ingest call. For webhook sources it carries a
// single entry; for status-page documents it sums over every extracted
// incident and component.
type Report struct {
	Source     string             `json:"source"`
	Fetched    int                `json:"fetched"`
	Stored     int                `json:"stored"`
	Duplicates int                `json:"duplicates"`
	Rejected   []source.Rejection `json:"rejected,omitempty"`
	Skipped    int                `json:"skipped"`
	Routed     int                `json:"routed"`
	Ignored    bool               `json:"ignored,omitempty"`
	Events     []EventReport      `json:"events"`
}

// RoutingToggle supplies the current warning-routing flag. It is read per
// ingestion so a config hot-reload takes effect on the next payload.
type RoutingToggle func() bool

// Pipeline runs raw payloads through adapter → store → routing.
type Pipeline struct {
	registry      *source.Registry
	store         *store.Store
	router        *routing.Engine
	routeWarnings RoutingToggle
}

func New(reg *source.Registry, st *store.Store, router *routing.Engine, toggle RoutingToggle) *Pipeline {
	return &Pipeline{registry: reg, store: st, router: router, routeWarnings: toggle}
}

// Ingest normalizes raw via the adapter registered for src, stores each
// event exactly once, and routes only events this call actually inserted.
// Duplicates short-circuit before routing; re-routing a duplicate is
// forbidden. A ValidationError from a single-payload source is returned to
// the caller with nothing stored; an unrecognized webhook type yields an
// ignored Report and a nil error.
func (p *Pipeline) Ingest(ctx context.Context, src string, raw []byte) (*Report, error) {
	adapter, err := p.registry.Get(src)
	if err != nil {
		return nil, err
	}

	res, err := adapter.Normalize(raw)
	if err != nil {
		if errors.Is(err, source.ErrUnrecognizedType) {
			metrics.PayloadsIgnored.WithLabelValues(src).Inc()
			return &Report{Source: src, Ignored: true, Events: []EventReport{}}, nil
		}
		var verr *source.ValidationError
		if errors.As(err, &verr) {
			metrics.EntriesRejected.WithLabelValues(src).Inc()
			return nil, err
		}
		return nil, fmt.Errorf("normalize %s: %w", src, err)
	}

	report := &Report{
		Source:   src,
		Fetched:  len(res.Events) + len(res.Rejected) + res.Skipped,
		Rejected: res.Rejected,
		Skipped:  res.Skipped,
		Events:   make([]EventReport, 0, len(res.Events)),
	}
	metrics.EntriesRejected.WithLabelValues(src).Add(float64(len(res.Rejected)))

	routeWarnings := p.routeWarnings()
	for _, ev := range res.Events {
		report.Events = append(report.Events, p.ingestOne(ctx, ev, routeWarnings, report))
	}
	metrics.StoredEvents.Set(float64(p.store.Len()))
	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, ev *event.Normalized, routeWarnings bool, report *Report) EventReport {
	stored, inserted := p.store.InsertIfAbsent(ev)
	if !inserted {
		report.Duplicates++
		metrics.EventsIngested.WithLabelValues(report.Source, string(OutcomeDuplicate)).Inc()
		return EventReport{
			EventID:     stored.EventID,
			Outcome:     OutcomeDuplicate,
			Routed:      stored.Delivery.Routed,
			DeliveredTo: stored.Delivery.DeliveredTo,
		}
	}

	report.Stored++
	metrics.EventsIngested.WithLabelValues(report.Source, string(OutcomeStored)).Inc()

	rr := p.router.EvaluateAndDeliver(ctx, stored, routeWarnings)
	if rr.Routed {
		report.Routed++
	}
	return EventReport{
		EventID:     stored.EventID,
		Outcome:     OutcomeStored,
		Routed:      rr.Routed,
		DeliveredTo: rr.DeliveredTo,
	}
}
