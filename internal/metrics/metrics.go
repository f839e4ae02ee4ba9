package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbridge_events_ingested_total",
		Help: "Total normalized events by source and outcome (stored, duplicate).",
	}, []string{"source", "outcome"})

	EntriesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbridge_entries_rejected_total",
		Help: "Total payload entries rejected by validation, labelled by source.",
	}, []string{"source"})

	PayloadsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbridge_payloads_ignored_total",
		Help: "Total payloads dropped by policy (unrecognized webhook types), labelled by source.",
	}, []string{"source"})

	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalbridge_signature_failures_total",
		Help: "Total webhook payloads rejected by signature verification.",
	})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbridge_deliveries_total",
		Help: "Total delivery attempts, labelled by destination and status.",
	}, []string{"destination", "status"})

	StatusPageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalbridge_statuspage_fetches_total",
		Help: "Total status-page fetches, labelled by source and status.",
	}, []string{"source", "status"})

	DeliveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signalbridge_delivery_duration_ms",
		Help:    "Pager delivery latency in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	StoredEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "signalbridge_stored_events",
		Help: "Current number of events held in the store.",
	})
)
