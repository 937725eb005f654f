// Command articlerec queries the recommendation engine from the shell and
// prints results as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/articlerec/internal/app"
	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

var (
	configPath string
	timeout    time.Duration
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "articlerec",
	Short: "Query the hybrid article recommender",
	Long: `articlerec runs searches and recommendations against the configured
article graph (Neo4j or a YAML fixture) without starting the HTTP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $ARTICLEREC_CONFIG_PATH or ./config/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(articleCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(conceptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp loads config and wires the engine for one command.
func openApp(cmd *cobra.Command) (*app.App, context.Context, context.CancelFunc, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("ARTICLEREC_CONFIG_PATH")
	}
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, nil, nil, err
	}

	log := logger.NewNop()
	if verbose {
		if log, err = logger.New(cfg.Env); err != nil {
			return nil, nil, nil, fmt.Errorf("init logger: %w", err)
		}
	}

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, timeout)
	a, err := app.NewWithLogger(ctx, cfg, log)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return a, ctx, cancel, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
