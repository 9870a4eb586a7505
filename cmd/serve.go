package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"funhub/internal/config"
	"funhub/internal/handlers"
	"funhub/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg config.Config) error {
	gin.SetMode(cfg.HTTP.GinMode)

	sessionService := services.NewSessionService(services.Options{
		Pacing:           pacingFrom(cfg.Draw),
		Namer:            newNamer(ctx, cfg.Naming),
		GroupTimeout:     cfg.Grouping.Timeout,
		DefaultGroupSize: cfg.Grouping.DefaultSize,
		DefaultTheme:     cfg.Grouping.DefaultTheme,
	})

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return fmt.Errorf("assets sub-filesystem: %w", err)
	}

	router := handlers.NewRouter(handlers.NewHTTPHandler(sessionService, templates))
	router.StaticFS("/assets", http.FS(assets))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server starting on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		janitor(ctx, sessionService, cfg.Session)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// janitor removes idle sessions until ctx ends.
func janitor(ctx context.Context, svc *services.SessionService, cfg config.SessionConfig) {
	ticker := time.NewTicker(cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.CleanUpInactiveSessions(cfg.IdleTTL); n > 0 {
				logger.Infof("Removed %d inactive sessions", n)
			}
			logger.V(1).Infof("%d sessions active", svc.SessionCount())
		}
	}
}
