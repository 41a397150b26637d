/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Skippy live dashboard engine: reference data
  load, Kafka consumer, processing loop, and the HTTP read API.

STARTUP SEQUENCE:
  1. Parse command-line flags, load configuration
  2. Open the reference database, load the cache (fatal on failure)
  3. Connect the Kafka consumer group (fatal on failure, no retry)
  4. Start the processing loop goroutine
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Optional YAML config file (env vars still take precedence)
  -addr    Override http.addr from config

FAILURE MODES:
  - Reference store or broker unreachable at startup: fatal.
  - Stream disconnect mid-run: fatal, process exits non-zero.
  - Malformed payload: per pipeline.decode_failure_policy.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the loop context is canceled, the server drains for
  up to 30s, then the consumer and database are closed.

SEE ALSO:
  - config/config.go: settings and env keys
  - pipeline/loop.go: the processing loop
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/api"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/config"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/logging"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/pipeline"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/refdata"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/store/sqlite"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/stream"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/window"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	addr := flag.String("addr", "", "override HTTP listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger isn't up yet; write plainly and exit.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	logger := logging.NewLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), logger))
	defer cancel()

	// Reference data: load once, fatal on failure.
	refStore, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatalw("failed to open reference database", zap.Error(err))
	}
	defer refStore.Close()

	cache, err := refdata.Load(ctx, refStore)
	if err != nil {
		logger.Fatalw("failed to load reference data", zap.Error(err))
	}
	logger.Infow("reference data loaded",
		"stores", len(cache.Stores),
		"products", len(cache.Products),
		"employees", len(cache.Employees))

	// Stream: connect now so a dead broker fails startup.
	consumer, err := stream.NewConsumer(ctx, cfg.Brokers, cfg.Topic, cfg.Group, logger)
	if err != nil {
		logger.Fatalw("failed to connect to the event stream", zap.Error(err))
	}
	defer consumer.Close()

	policy := pipeline.PolicyFatal
	if cfg.DecodePolicy == config.DecodeSkip {
		policy = pipeline.PolicySkip
	}

	holder := api.NewHolder()
	loop := pipeline.NewLoop(consumer, window.NewBuffer(window.DefaultCapacity), cache, holder, policy, logger)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx)
	}()

	router := api.NewRouter(api.NewHandler(holder, logger))
	server := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Infow("dashboard API listening", "addr", cfg.HTTPAddr, "topic", cfg.Topic)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		logger.Info("shutting down")
	case err := <-loopErr:
		if err != nil {
			logger.Errorw("pipeline stopped", zap.Error(err))
			exitCode = 1
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server forced to shutdown", zap.Error(err))
		exitCode = 1
	}

	logger.Info("stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
