package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/config"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/photos"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/tracker"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	policy, err := cfg.Store.Policy()
	if err != nil {
		log.Error("invalid store settings", "error", err)
		os.Exit(1)
	}

	// Open database (runs migrations)
	ctx := context.Background()
	var store tracker.Store
	db, err := storage.Open(ctx, storage.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN(),
		MigrationURL: cfg.Database.MigrationURL(),
	}, log)
	switch {
	case err != nil && *migrateOnly:
		log.Error("migration failed", "error", err)
		os.Exit(1)
	case err != nil:
		// Keep serving: collections stay empty and commits report failure.
		log.Error("storage unavailable, running without persistence", "error", err)
		store = storage.Unavailable{Err: err}
	default:
		defer db.Close()
		store = db
		log.Info("database ready", "driver", cfg.Database.Driver)
	}

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	tr := tracker.New(store, tracker.WithPolicy(policy), tracker.WithLogger(log))
	if err := tr.Load(ctx); err != nil {
		log.Warn("initial load incomplete", "error", err)
	}
	log.Info("state loaded", "plans", len(tr.WorkoutPlans()), "workouts", len(tr.Workouts()))

	photoDir, err := photos.New(cfg.Photos.Dir)
	if err != nil {
		log.Error("failed to prepare photo directory", "error", err)
		os.Exit(1)
	}

	// Create servers
	srv := server.New(tr, photoDir, cfg.Auth.APIKey, log)
	mcpSrv := liftmcp.New(liftmcp.TrackerSource{T: tr}, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if _, ok := tr.CurrentWorkout(); ok {
		log.Warn("active workout was not completed and is discarded")
	}
	log.Info("server stopped")
}
