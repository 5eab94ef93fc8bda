package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ishita-02/The-DeFi-App/internal/app"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a single leveraged position from the command line",
	Long: `Runs the full settlement pipeline once for the given position and
prints the outcome. Respects EXECUTION_MODE: in simulate mode nothing is
broadcast on-chain.`,
	RunE: runOpen,
}

var (
	openCollateral string
	openCoin       string
	openColAmount  string
	openCoinAmount string
	openUser       string
)

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().StringVar(&openCollateral, "collateral", "", "Collateral token address")
	openCmd.Flags().StringVar(&openCoin, "coin", "", "Coin to borrow (flash-loaned asset) address")
	openCmd.Flags().StringVar(&openColAmount, "col-amount", "", "Collateral amount in token units")
	openCmd.Flags().StringVar(&openCoinAmount, "coin-amount", "", "Borrow amount in token units")
	openCmd.Flags().StringVar(&openUser, "user", "", "Position owner address")

	_ = openCmd.MarkFlagRequired("collateral")
	_ = openCmd.MarkFlagRequired("coin")
	_ = openCmd.MarkFlagRequired("col-amount")
	_ = openCmd.MarkFlagRequired("coin-amount")
	_ = openCmd.MarkFlagRequired("user")
}

func runOpen(cmd *cobra.Command, args []string) error {
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

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		_ = application.Shutdown()
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result := application.Orchestrator().Open(ctx, &types.PositionRequest{
		CollateralToken:  openCollateral,
		BorrowToken:      openCoin,
		CollateralAmount: openColAmount,
		BorrowAmount:     openCoinAmount,
		UserAddress:      openUser,
	})

	fmt.Printf("Run:    %s\n", result.RunID)
	fmt.Printf("Status: %s\n", result.Status)

	switch result.Status {
	case types.StatusSimulated:
		fmt.Printf("Report:   %s\n", result.ReportURL)
		fmt.Printf("Swap out: %s\n", result.ProjectedOutput.String())
	case types.StatusSubmitted:
		fmt.Printf("Tx hash:  %s\n", result.TxHash)
		fmt.Printf("Swap out: %s\n", result.ProjectedOutput.String())
	case types.StatusRejected:
		fmt.Printf("Reason: %s\n", result.Reason)
	case types.StatusFailed:
		fmt.Printf("Error (%s): %s\n", result.ErrorKind, result.Detail)
	}

	return nil
}
