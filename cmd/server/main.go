// Package main is the entry point for the quantum register simulation
// service. It wires configuration, logging, the results database, the
// session service and the HTTP API, starts the cleanup scheduler, and
// handles graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/qsim/internal/config"
	"github.com/aristath/qsim/internal/database"
	"github.com/aristath/qsim/internal/modules/simulation"
	"github.com/aristath/qsim/internal/scheduler"
	"github.com/aristath/qsim/internal/server"
	"github.com/aristath/qsim/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger isn't up yet; fall back to stderr.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Int("max_qubits", cfg.MaxQubits).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Starting simulator")

	resultsDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "results.db"),
		Name: "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	if err := resultsDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate results database")
	}

	repo := simulation.NewRepository(resultsDB.Conn(), log)
	service := simulation.NewService(repo, cfg.MaxQubits, cfg.SamplerSeed, log)

	sched := scheduler.New(log)
	janitor := simulation.NewJanitor(service, cfg.SessionTTL, log)
	if err := sched.AddJob("@every 5m", janitor); err != nil {
		log.Fatal().Err(err).Msg("Failed to register janitor job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		ResultsDB: resultsDB,
		Service:   service,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
