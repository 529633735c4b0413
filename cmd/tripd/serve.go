package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tripd/tripd/internal/agent"
	"github.com/tripd/tripd/internal/api"
	"github.com/tripd/tripd/internal/assets"
	"github.com/tripd/tripd/internal/auth"
	"github.com/tripd/tripd/internal/config"
	"github.com/tripd/tripd/internal/currency"
	"github.com/tripd/tripd/internal/llm"
	"github.com/tripd/tripd/internal/memory"
	"github.com/tripd/tripd/internal/search"
	"github.com/tripd/tripd/internal/storage"
	"github.com/tripd/tripd/internal/tools"
	"github.com/tripd/tripd/internal/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tripd gateway (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	searcher := search.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL)
	orchestrator := agent.New(
		agent.LLMProvider{Client: llmClient},
		memory.NewAdapter(store),
		tools.NewExecutor(searcher),
		agent.Options{
			HistoryWindow: cfg.Chat.HistoryWindow,
			MemoryLimit:   cfg.Chat.MemoryLimit,
		},
	)

	assetDir := filepath.Join(cfg.Storage.DataDir, "assets")
	publicBase := cfg.Server.PublicBaseURL
	if publicBase == "" {
		publicBase = "http://" + cfg.Server.Addr()
	}

	handler := api.NewHandler(api.Deps{
		Responder: orchestrator,
		Verifier:  auth.NewStaticVerifier(cfg.Auth.Tokens),
		Assets:    assets.NewStore(assetDir, publicBase),
		Store:     store,
		AssetDir:  assetDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// MCP server on stdio, alongside HTTP. Same search path the in-band
	// tool calls use.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Searcher: searcher,
		Weather:  weather.NewClient(),
		Rates:    currency.NewClient(),
	})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("tripd listening", "addr", cfg.Server.Addr(), "model", cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	var errs *multierror.Error
	if err := g.Wait(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := store.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("closing storage: %w", err))
	}
	return errs.ErrorOrNil()
}
