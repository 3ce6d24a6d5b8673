package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-extensions/internal/api"
	"media-extensions/internal/media"
	"media-extensions/internal/pipeline"
	"media-extensions/internal/platform/config"
	"media-extensions/internal/platform/logger"
	"media-extensions/internal/platform/metrics"
	"media-extensions/internal/registry"
	"media-extensions/internal/renderer"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	reg := registry.New(cfg.ResolveCacheSize)
	manifest, err := config.LoadManifest(cfg.ExtensionsFile)
	switch {
	case err == nil:
		if err := registry.ApplyManifest(reg, manifest); err != nil {
			log.Error("invalid extensions manifest", "file", cfg.ExtensionsFile, "error", err)
			os.Exit(1)
		}
		log.Info("extensions manifest applied", "file", cfg.ExtensionsFile, "sources", len(manifest.Sources))
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("no extensions manifest", "file", cfg.ExtensionsFile)
	default:
		log.Error("read extensions manifest", "file", cfg.ExtensionsFile, "error", err)
		os.Exit(1)
	}

	met := metrics.New()
	asm := pipeline.NewAssembler(reg, renderer.NewFactory(), cfg.UserAgent, log, met)
	h := api.NewHandler(reg, asm, log, met)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			for _, c := range media.RendererCategories() {
				met.SetRegisteredRenderers(c.String(), reg.RendererCount(c))
			}
			met.SetRegisteredSources(reg.SourceCount())
		}).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"user_agent", cfg.UserAgent,
		"resolve_cache_size", cfg.ResolveCacheSize,
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
