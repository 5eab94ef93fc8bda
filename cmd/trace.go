package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ishita-02/The-DeFi-App/internal/simulator"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
)

var traceCmd = &cobra.Command{
	Use:   "trace <tx-hash>",
	Short: "Fetch the execution trace of a mined transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	txHash := args[0]
	if !simulator.ValidTxHash(txHash) {
		return fmt.Errorf("invalid transaction hash %q", txHash)
	}

	client, err := ethclient.Dial(cfg.NodeRPCURL)
	if err != nil {
		return fmt.Errorf("dial node: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	report, err := simulator.NewTraceClient(client, logger).Trace(ctx, txHash)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
