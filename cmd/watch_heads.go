package cmd

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ishita-02/The-DeFi-App/internal/chain"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
)

var watchHeadsCmd = &cobra.Command{
	Use:   "watch-heads",
	Short: "Stream new block headers from the node",
	Long: `Subscribes to newHeads over the node's websocket endpoint and
prints each header. Useful to verify node connectivity before running
the service in submit mode.`,
	RunE: runWatchHeads,
}

func init() {
	rootCmd.AddCommand(watchHeadsCmd)
}

func runWatchHeads(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.NodeWSURL == "" {
		return fmt.Errorf("NODE_WS_API not set")
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	watcher := chain.NewHeadWatcher(cfg.NodeWSURL, logger)

	fmt.Printf("Watching heads on %s (Ctrl-C to stop)\n", cfg.NodeWSURL)

	return watcher.Watch(cmd.Context(), func(h chain.Header) {
		fmt.Printf("[%s] block %s hash %s\n",
			time.Unix(int64(h.Timestamp), 0).Format(time.RFC3339),
			h.Number.String(),
			h.Hash)
	})
}
