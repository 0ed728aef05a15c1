/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the asset engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Configure structured logging
  3. Initialize SQLite repository
  4. Create API handler and depreciation runner
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: assets.db)
              Use ":memory:" for an in-memory database
  -log-level  logrus level: debug, info, warn, error (default: info)
  -log-json   emit JSON logs instead of text (default: false)
  -runner     enable the scheduled bulk depreciation runner (default: true)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the depreciation runner
  4. Close the database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/assets.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/asset-engine/api"
	"github.com/warp/asset-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "assets.db", "SQLite database path")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logJSON := flag.Bool("log-json", false, "emit JSON logs")
	runnerOn := flag.Bool("runner", true, "enable scheduled depreciation runner")
	flag.Parse()

	// Logging
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if *logJSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.WithField("level", *logLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Repository
	repo, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer repo.Close()

	// Handler and router
	handler := api.NewHandler(repo, log)
	router := api.NewRouter(handler)

	// Scheduled bulk depreciation
	runner := api.NewDepreciationRunner(repo, log)
	runner.Enabled = *runnerOn
	runner.Start()
	defer runner.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}
