package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/router"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	ctx := context.Background()
	store := db.NewStore(dbConn)

	record, created, err := store.LoadOrCreateElection(ctx, cfg.CoordinatorID, cfg.ElectionTitle)
	if err != nil {
		slog.Error("failed to load election", "error", err)
		os.Exit(1)
	}
	if created {
		// Logged only on first start
		slog.Info("coordinator key issued",
			"election_id", record.ID,
			"coordinator", record.CoordinatorID,
			"coordinator_key", auth.GenerateCoordinatorKey(record.ID, record.CoordinatorID, cfg.CoordinatorKeySalt),
		)
	}

	// Replay the journal
	events, err := store.ListEvents(ctx, record.ID, 0)
	if err != nil {
		slog.Error("failed to load election events", "error", err)
		os.Exit(1)
	}
	el, err := election.Restore(election.Identity(record.CoordinatorID), events, election.Options{
		Journal:   store.Journal(record.ID),
		Observers: []election.Observer{election.LogObserver{}},
	})
	if err != nil {
		slog.Error("failed to restore election", "election_id", record.ID, "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(el, store, record, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "election_id", record.ID, "phase", el.Snapshot().Phase.String())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
