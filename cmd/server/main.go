package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docchat/internal/api"
	"github.com/dgallion1/docchat/internal/chat"
	"github.com/dgallion1/docchat/internal/chunker"
	"github.com/dgallion1/docchat/internal/claude"
	"github.com/dgallion1/docchat/internal/config"
)

func main() {
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	apiKey := cfg.AnthropicAPIKey
	if apiKey == "" {
		key, err := config.PromptAPIKey()
		if err != nil {
			log.Error("no anthropic api key", "error", err)
			os.Exit(1)
		}
		apiKey = key
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Chunk the document up front so a bad path or corrupt file fails at
	// startup instead of on the first question.
	chunks := chunker.NewCache(cfg.MaxPagesPerUnit)
	units, fingerprint, err := chunks.Get(cfg.DocumentPath)
	if err != nil {
		log.Error("failed to chunk document", "path", cfg.DocumentPath, "error", err)
		os.Exit(1)
	}
	log.Info("document ready",
		"path", cfg.DocumentPath,
		"units", len(units),
		"pages", units[len(units)-1].EndPage,
		"fingerprint", fingerprint)

	client := claude.NewClient(apiKey, cfg.AnthropicModel, claude.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
	})

	sessions := chat.NewStore(cfg.SessionTTL)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Cleanup(); n > 0 {
					log.Info("expired sessions evicted", "count", n)
				}
			}
		}
	}()

	assembler := chat.NewAssembler(client, log)
	srv := api.NewServer(sessions, assembler, chunks, client, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting docchat", "port", cfg.Port, "model", client.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
