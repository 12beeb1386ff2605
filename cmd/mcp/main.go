package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iammorganparry/circle/internal/client"
	"github.com/iammorganparry/circle/internal/config"
	"github.com/iammorganparry/circle/internal/mcp"
	"github.com/iammorganparry/circle/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.ServerURL, models.RoleFacilitator, client.WithAPIKey(cfg.APIKey))
	if err := mcp.NewServer(api, logger).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %s\n", err)
		os.Exit(1)
	}
}
