package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	// bubbletea owns stdout, so logs only go to a file when asked for
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.TUILog != "" {
		f, err := os.OpenFile(cfg.TUILog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open tui log: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	base := newClient(models.RoleParticipant)
	dial := func(r models.Role) tui.Backend { return base.WithRole(r) }

	p := tea.NewProgram(
		tui.NewRootModel(dial, models.Role(role), logger),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal portal: %w", err)
	}
	return nil
}
