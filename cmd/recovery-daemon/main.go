// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/soloking1412/email-recovery/lib/clock"
	"github.com/soloking1412/email-recovery/lib/config"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/journal"
	"github.com/soloking1412/email-recovery/lib/socketapi"
	"github.com/soloking1412/email-recovery/lib/sqlitestore"
	"github.com/soloking1412/email-recovery/lib/subject"
	"github.com/soloking1412/email-recovery/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to recovery.yaml (defaults to $RECOVERY_CONFIG)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("recovery-daemon %s\n", version.Info())
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return fmt.Errorf("creating state directories: %w", err)
	}

	// Static owner sets for recovery subject validation. Without them
	// the daemon still serves guardian bookkeeping, but every recovery
	// subject fails its old-owner check.
	owners, err := loadOwners(cfg.Paths.Owners)
	if err != nil {
		return fmt.Errorf("loading owners: %w", err)
	}
	if cfg.Daemon.RequireOwners && len(owners) == 0 {
		return fmt.Errorf("daemon.require_owners is set but %s declares no accounts", cfg.Paths.Owners)
	}
	if cfg.Paths.Owners != "" {
		logger.Info("owner sets loaded", "path", cfg.Paths.Owners, "accounts", len(owners))
	}

	store, err := sqlitestore.Open(sqlitestore.Config{
		Path:     cfg.Paths.Store,
		PoolSize: cfg.Store.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	journalOptions, err := cfg.JournalOptions()
	if err != nil {
		return err
	}
	journalWriter, err := journal.OpenWriter(cfg.Paths.Journal, journalOptions...)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		if err := journalWriter.Close(); err != nil && !errors.Is(err, journal.ErrClosed) {
			logger.Error("closing journal", "error", err)
		}
	}()
	logger.Info("journal open",
		"directory", cfg.Paths.Journal,
		"sequence", journalWriter.Sequence(),
		"compression", cfg.Journal.Compression,
	)

	clk := clock.Real()

	// Sink order matters: the journal is the durable audit trail, the
	// store mirror keeps the SQLite event table queryable, and the log
	// sink is operator visibility only.
	registry := guardian.NewRegistry(store,
		guardian.WithClock(clk),
		guardian.WithSink(guardian.MultiSink{
			journalWriter,
			store.EventSink(),
			guardian.NewLogSink(logger),
		}),
	)

	// The self-hash identifies the running build in status responses.
	// Failure is not fatal: /proc may be restricted in some sandboxes.
	binaryHash, _, err := version.ComputeSelfHash()
	if err != nil {
		logger.Warn("cannot hash own binary", "error", err)
	}

	daemon := &Daemon{
		registry:   registry,
		store:      store,
		journal:    journalWriter,
		validator:  subject.NewValidator(owners),
		clock:      clk,
		startedAt:  clk.Now(),
		binaryHash: binaryHash,
		logger:     logger,
	}

	server := socketapi.NewServer(cfg.Daemon.SocketPath, logger)
	daemon.registerActions(server)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Serve(ctx)
	}()

	logger.Info("recovery daemon running",
		"socket", cfg.Daemon.SocketPath,
		"store", cfg.Paths.Store,
		"environment", string(cfg.Environment),
		"version", version.Info(),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	// Wait for the socket server to drain active connections.
	if err := <-serverDone; err != nil {
		logger.Error("socket server error", "error", err)
	}

	return nil
}
