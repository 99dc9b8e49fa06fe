package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evently-app/evently/internal/config"
	"github.com/evently-app/evently/pkg/analytics"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "evently",
	Short: "Event economic impact analytics",
	Long:  "Serves the Evently web front end and queries the analytics API from the command line.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// networkHint returns a remediation line when err means the API was
// unreachable, or "" otherwise.
func networkHint(err error, apiURL string) string {
	if !analytics.IsNetwork(err) {
		return ""
	}
	return fmt.Sprintf("cannot reach the analytics API at %s; is the backend running? (set EVENTLY_API_URL to change it)", apiURL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if cfg != nil {
			if hint := networkHint(err, cfg.APIBaseURL()); hint != "" {
				fmt.Fprintln(os.Stderr, hint)
			}
		}
		os.Exit(1)
	}
}
