package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pauljones0/price-tracker-bot/internal/bot"
	"github.com/pauljones0/price-tracker-bot/internal/config"
	"github.com/pauljones0/price-tracker-bot/internal/endpoint"
	"github.com/pauljones0/price-tracker-bot/internal/notifier"
	"github.com/pauljones0/price-tracker-bot/internal/processor"
	"github.com/pauljones0/price-tracker-bot/internal/scraper"
	"github.com/pauljones0/price-tracker-bot/internal/storage"
)

const version = "1.2.0"

type Server struct {
	reconciler *processor.Reconciler
}

func main() {
	slog.Info("Starting Price Tracker Bot server...")

	// .env is a local-development convenience; deployed environments inject
	// real variables.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.ProjectID)
	if err != nil {
		slog.Error("Critical error initializing Firestore client", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	extractor := scraper.NewExtractor(scraper.LoadConfig())
	resolver := endpoint.NewResolver(store, cfg.FallbackEndpointURL, cfg.EndpointFreshness)
	backend := scraper.NewBackend(cfg, extractor, resolver)
	slog.Info("Scraping backend selected", "backend", backend.Name())

	tg := notifier.New(cfg.TelegramBotToken)
	reconciler := processor.New(store, tg, backend, cfg)
	webhook := bot.NewHandler(reconciler, tg)

	srv := &Server{reconciler: reconciler}

	mux := http.NewServeMux()
	mux.Handle("/webhook", webhook)
	mux.HandleFunc("/sweep", srv.SweepHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":%q}`+"\n", version)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

// SweepHandler kicks off a background sweep over all active trackings. The
// scheduler that calls it only needs an acknowledgement; the sweep itself can
// outlive the request timeout.
func (s *Server) SweepHandler(w http.ResponseWriter, r *http.Request) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic in sweep", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		report, err := s.reconciler.RunSweep(ctx)
		if err != nil {
			slog.Error("Sweep aborted", "error", err, "checked", report.Checked)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Sweep started.")
}
