package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/koans/api"
	"github.com/use-agent/koans/config"
	"github.com/use-agent/koans/engine"
	"github.com/use-agent/koans/scraper"
	"github.com/use-agent/koans/script"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// fetchStack is the page fetching setup shared by serve and scenes.
type fetchStack struct {
	engine  engine.Engine
	browser *scraper.Browser
	memory  *engine.DomainMemory
}

// newFetchStack builds the HTTP engine and, when enabled, escalates to the
// browser through a Dispatcher. Rod engine callbacks close over the browser
// so engine never imports scraper.
func newFetchStack(cfg *config.Config) (*fetchStack, error) {
	httpEngine := engine.NewHTTPEngine(cfg.Fetch.Timeout, engine.WithUserAgent(cfg.Fetch.UserAgent))
	if !cfg.Browser.Enabled {
		return &fetchStack{engine: httpEngine}, nil
	}

	browser, err := scraper.NewBrowser(cfg.Browser)
	if err != nil {
		return nil, err
	}
	engines := []engine.Engine{
		httpEngine,
		engine.NewRodEngine(browser.Fetch, false),
		engine.NewRodEngine(browser.Fetch, true),
	}
	memory := engine.NewDomainMemory(24 * time.Hour)
	slog.Info("multi-engine dispatcher enabled",
		"engines", len(engines),
		"delays", cfg.Fetch.EscalationDelays,
	)
	return &fetchStack{
		engine:  engine.NewDispatcher(engines, cfg.Fetch.EscalationDelays, memory),
		browser: browser,
		memory:  memory,
	}, nil
}

func (s *fetchStack) Close() {
	s.memory.Stop()
	if s.browser != nil {
		s.browser.Close()
	}
}

func newLoader(cfg *config.Config, eng engine.Engine) *script.Loader {
	return script.NewLoader(eng, script.LoaderConfig{
		DefaultURL:    cfg.Script.URL,
		Timeout:       cfg.Fetch.Timeout,
		Retries:       cfg.Fetch.Retries,
		RetryDelay:    cfg.Fetch.RetryDelay,
		RetryMaxDelay: cfg.Fetch.RetryMaxDelay,
		CacheEntries:  cfg.Cache.MaxEntries,
		CacheTTL:      cfg.Cache.TTL,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	slog.Info("koans starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
	)

	stack, err := newFetchStack(cfg)
	if err != nil {
		slog.Error("failed to initialise fetch engines", "error", err)
		return err
	}
	defer stack.Close()

	loader := newLoader(cfg, stack.engine)
	defer loader.Close()

	deps := api.Deps{Loader: loader, StartTime: time.Now()}
	if stack.browser != nil {
		deps.Pool = stack.browser
	}
	router := api.NewRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("koans stopped")
	return nil
}
