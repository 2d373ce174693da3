package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quantfeed/tradecast/internal/broker"
	"github.com/quantfeed/tradecast/internal/config"
	"github.com/quantfeed/tradecast/internal/provider"
	"github.com/quantfeed/tradecast/internal/server"
	"github.com/quantfeed/tradecast/internal/symbols"
	"github.com/quantfeed/tradecast/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when omitted)")
	listenAddr := flag.String("listen", "", "override consumer listen address")
	catalogURL := flag.String("catalog-url", "", "override symbol catalog URL")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tradecast",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := loadConfig(*configPath, *listenAddr, *catalogURL)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"listen_addr", cfg.Server.ListenAddr,
		"catalog_url", cfg.Catalog.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Load the symbol universe. Nothing can be validated without it,
	// so failure after the retry budget is fatal.
	validator := symbols.NewValidator(symbols.Config{
		URL:            cfg.Catalog.URL,
		RetryCount:     cfg.Catalog.RetryCount,
		RetryBaseDelay: cfg.Catalog.RetryBaseDelay,
		FetchTimeout:   cfg.Catalog.FetchTimeout,
	}, logger)

	if err := validator.Load(ctx); err != nil {
		logger.Error("failed to load symbol universe", "error", err)
		os.Exit(1)
	}

	dialerCfg := provider.DefaultConfig()
	dialerCfg.WriteTimeout = cfg.Providers.WriteTimeout
	dialerCfg.PingInterval = cfg.Providers.PingInterval
	dialerCfg.MessageBuffer = cfg.Providers.MessageBuffer
	dialer := provider.NewDialer(dialerCfg, logger)

	b := broker.New(dialer, validator, logger)

	srv := server.New(server.Config{
		ListenAddr:   cfg.Server.ListenAddr,
		SendBuffer:   cfg.Consumers.SendBuffer,
		WriteTimeout: cfg.Consumers.WriteTimeout,
	}, b, validator, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		b.Shutdown()
		os.Exit(1)
	}

	b.Shutdown()
	logger.Info("tradecast stopped")
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(path, listenAddr, catalogURL string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if path != "" {
		cfg, err = config.LoadWithDefaults(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	if catalogURL != "" {
		cfg.Catalog.URL = catalogURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
