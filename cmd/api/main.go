package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sweepnav/internal/api"
	"sweepnav/internal/config"
	"sweepnav/internal/logging"
	"sweepnav/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Log)
	log := logging.Component("main")

	metrics.RegisterDefault()

	srv, err := api.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init server")
	}

	mux := http.NewServeMux()

	// Optimization
	limited := func(h http.HandlerFunc) http.Handler {
		return api.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, h)
	}
	mux.Handle("/v1/optimize", limited(srv.OptimizeHandler))
	mux.Handle("/v1/optimize/baseline", limited(srv.BaselineHandler))
	mux.Handle("/v1/schedule", limited(srv.ScheduleHandler))
	mux.Handle("/v1/cleaning/optimize", limited(srv.CleaningHandler))

	// Runs
	mux.HandleFunc("/v1/runs", srv.RunsIndexHandler)
	mux.HandleFunc("/v1/runs/", srv.RunByIDHandler) // includes /progress/ws

	// Health
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LogMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
