package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkarger/signalbridge/internal/api"
	"github.com/dkarger/signalbridge/internal/config"
	"github.com/dkarger/signalbridge/internal/destination"
	"github.com/dkarger/signalbridge/internal/fetch"
	"github.com/dkarger/signalbridge/internal/pipeline"
	"github.com/dkarger/signalbridge/internal/routing"
	"github.com/dkarger/signalbridge/internal/source"
	"github.com/dkarger/signalbridge/internal/store"
	"github.com/dkarger/signalbridge/internal/verify"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/signalbridge.yaml", "Path to YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Source registry ──────────────────────────────────────────────────────
	reg := source.NewRegistry()
	reg.Register(source.NewPaymentAdapter())
	for _, p := range cfg.StatusPages {
		reg.Register(source.NewStatusPageAdapter(p.Name))
	}
	slog.Info("sources registered", "sources", reg.Sources())

	// ── Store, destinations, routing, pipeline ───────────────────────────────
	st := store.New()

	dests := make([]destination.Client, 0, len(cfg.Destinations))
	deliveryTimeout := time.Duration(cfg.Routing.DeliveryTimeoutMs) * time.Millisecond
	for _, d := range cfg.Destinations {
		dests = append(dests, destination.NewPager(d.Name, d.URL, deliveryTimeout))
	}

	router := routing.New(st, dests, deliveryTimeout)
	pipe := pipeline.New(reg, st, router, func() bool {
		return loader.Config().Routing.RouteWarnings
	})

	verifier := verify.New(cfg.Payment.SigningSecret, time.Duration(cfg.Payment.ToleranceSec)*time.Second)
	fetcher := fetch.New(fetchTimeout(cfg))

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		slog.Info("config hot-reloaded", "route_warnings", newCfg.Routing.RouteWarnings)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(pipe, st, loader, verifier, fetcher)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	slog.Info("goodbye")
}

// fetchTimeout returns the largest configured page timeout so one client
// serves every page.
func fetchTimeout(cfg *config.Config) time.Duration {
	max := 0
	for _, p := range cfg.StatusPages {
		if p.FetchTimeoutMs > max {
			max = p.FetchTimeoutMs
		}
	}
	return time.Duration(max) * time.Millisecond
}
