package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iammorganparry/circle/internal/client"
	"github.com/iammorganparry/circle/internal/config"
	"github.com/iammorganparry/circle/internal/models"
)

var (
	// Global flags
	serverURL string
	apiKey    string
	role      string
	timeout   time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "circle",
	Short: "Healing circle portal in the terminal",
	Long: `circle talks to a running circle server.

Run without arguments to open the terminal portal. The directory, report
and summary commands print facilitator views to stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if serverURL == "" {
			serverURL = cfg.ServerURL
		}
		if apiKey == "" {
			apiKey = cfg.APIKey
		}
		if role != "" && !models.Role(role).IsValid() {
			return fmt.Errorf("--role must be participant or facilitator, got %q", role)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "circle server URL (default $CIRCLE_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API bearer key (default $CIRCLE_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "sign in as participant or facilitator")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "request timeout for one-shot commands")

	rootCmd.AddCommand(tuiCmd, directoryCmd, reportCmd, summaryCmd)
}

// newClient builds an API client for the selected role, defaulting to def.
func newClient(def models.Role) *client.Client {
	r := def
	if role != "" {
		r = models.Role(role)
	}
	return client.New(serverURL, r, client.WithAPIKey(apiKey))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
