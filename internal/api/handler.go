package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkarger/signalbridge/internal/config"
	"github.com/dkarger/signalbridge/internal/fetch"
	"github.com/dkarger/signalbridge/internal/metrics"
	"github.com/dkarger/signalbridge/internal/pipeline"
	"github.com/dkarger/signalbridge/internal/source"
	"github.com/dkarger/signalbridge/internal/store"
	"github.com/dkarger/signalbridge/internal/verify"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// Handler holds all HTTP handler dependencies.
type Handler struct {
	pipe     *pipeline.Pipeline
	store    *store.Store
	loader   *config.Loader
	verifier *verify.Verifier
	fetcher  *fetch.Fetcher
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(pipe *pipeline.Pipeline, st *store.Store, loader *config.Loader, verifier *verify.Verifier, fetcher *fetch.Fetcher) http.Handler {
	h := &Handler{pipe: pipe, store: st, loader: loader, verifier: verifier, fetcher: fetcher, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/webhooks/payments", h.paymentWebhook)
	h.mux.HandleFunc("POST /v1/statuspages/{name}/poll", h.pollStatusPage)
	h.mux.HandleFunc("GET /v1/events", h.listEvents)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/webhooks/payments — signed payment-processor webhook.
func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	// Authenticity gate: an unverified payload never reaches normalization.
	if err := h.verifier.Verify(body, r.Header.Get("Signature")); err != nil {
		metrics.SignatureFailures.Inc()
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	report, err := h.pipe.Ingest(r.Context(), source.SourcePayments, body)
	if err != nil {
		var verr *source.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /v1/statuspages/{name}/poll — externally-triggered status-page poll.
func (h *Handler) pollStatusPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	page, ok := h.findPage(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown status page %q", name))
		return
	}

	doc, err := h.fetcher.Fetch(r.Context(), page.URL)
	if err != nil {
		metrics.StatusPageFetches.WithLabelValues(name, "error").Inc()
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.StatusPageFetches.WithLabelValues(name, "success").Inc()

	report, err := h.pipe.Ingest(r.Context(), name, doc)
	if err != nil {
		var verr *source.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadGateway, verr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"poll_id": uuid.New().String(),
		"report":  report,
	})
}

// GET /v1/events?limit=N — most recent events first, default 50.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	events := h.store.Recent(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// POST /v1/config/reload — force a config re-read from disk.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":       true,
		"route_warnings": cfg.Routing.RouteWarnings,
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) findPage(name string) (config.StatusPageConf, bool) {
	for _, p := range h.loader.Config().StatusPages {
		if p.Name == name {
			return p, true
		}
	}
	return config.StatusPageConf{}, false
}
