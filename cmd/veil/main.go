// Command veil runs the cloud browser tool server: a local JSON/HTTP
// API that exposes remote antidetect browser sessions as a uniform
// tool catalogue.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veilhq/veil/pkg/api"
	"github.com/veilhq/veil/pkg/browser"
	"github.com/veilhq/veil/pkg/config"
	"github.com/veilhq/veil/pkg/logging"
	"github.com/veilhq/veil/pkg/tool"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "veil: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to veil.yaml (default: ~/.veil/veil.yaml if present)")
	listen := flag.String("listen", "", "listen address override")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("veil " + version)
		return nil
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir)
	if err != nil {
		return fmt.Errorf("open logs: %w", err)
	}
	defer logger.Close()
	logger.SetMinLevel(logging.Level(cfg.Logging.MinLevel))

	browserCfg, err := cfg.BrowserConfig()
	if err != nil {
		return err
	}
	store, err := browser.NewStore(browserCfg)
	if err != nil {
		return err
	}
	store.SetLogger(logger)

	registry := tool.NewRegistry()
	if err := tool.RegisterBuiltin(registry, store); err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		BindAddress:   cfg.Server.Listen,
		Version:       version,
		PublicMetrics: cfg.Server.PublicMetrics,
	}, store, registry, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info(logging.CategoryAPI, "shutdown", "signal received", map[string]any{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
