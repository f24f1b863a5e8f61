package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docchat/internal/chat"
	"github.com/dgallion1/docchat/internal/chunker"
	"github.com/dgallion1/docchat/internal/claude"
	"github.com/dgallion1/docchat/internal/config"
)

// chat is a terminal client for asking questions about the configured
// document. It keeps one session for the life of the process.
func main() {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := config.Load()
	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	apiKey := cfg.AnthropicAPIKey
	if apiKey == "" {
		key, err := config.PromptAPIKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		apiKey = key
	}

	chunks := chunker.NewCache(cfg.MaxPagesPerUnit)
	units, _, err := chunks.Get(cfg.DocumentPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	client := claude.NewClient(apiKey, cfg.AnthropicModel, claude.Options{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
	})
	defer client.Close()

	assembler := chat.NewAssembler(client, log)
	sess := chat.NewSession()

	fmt.Printf("Loaded %s (%d pages, %d units). Type a question, or \"exit\" to quit.\n",
		cfg.DocumentPath, units[len(units)-1].EndPage, len(units))
	fmt.Println(chat.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := assembler.Exchange(context.Background(), sess, units, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}

		fmt.Println()
		fmt.Println(reply.Content)
		if len(reply.Citations) > 0 {
			fmt.Println("\nReferences:")
			for i, c := range reply.Citations {
				fmt.Printf("  %d. From %s (page %d): %s\n", i+1, c.Document, c.StartPage, c.Text)
			}
		}
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
