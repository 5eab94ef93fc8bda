package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ishita-02/The-DeFi-App/internal/bundle"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
)

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Show the flash-loan premium rate",
	Long: `Reads FLASHLOAN_PREMIUM_TOTAL from the pool contract and shows
the repayment for a sample borrow. With --amount, shows the exact premium
and total for that borrow in base units.`,
	RunE: runPremium,
}

var premiumAmount string

func init() {
	rootCmd.AddCommand(premiumCmd)

	premiumCmd.Flags().StringVar(&premiumAmount, "amount", "1000000000", "Borrow amount in base units")
}

func runPremium(cmd *cobra.Command, args []string) error {
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

	amount, ok := new(big.Int).SetString(premiumAmount, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", premiumAmount)
	}

	var source bundle.PremiumSource
	if cfg.PremiumSource == config.PremiumSourcePool {
		client, err := ethclient.Dial(cfg.NodeRPCURL)
		if err != nil {
			return fmt.Errorf("dial node: %w", err)
		}
		defer client.Close()

		source, err = bundle.NewPremiumFetcher(client, common.HexToAddress(cfg.PoolAddress), logger)
		if err != nil {
			return fmt.Errorf("create premium fetcher: %w", err)
		}
	} else {
		source = bundle.NewStaticPremium(bundle.PremiumRate{Num: cfg.PremiumNum, Den: cfg.PremiumDen})
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	rate, err := source.Rate(ctx)
	if err != nil {
		return fmt.Errorf("fetch premium rate: %w", err)
	}

	plan, err := bundle.ComputeRepayment(amount, rate)
	if err != nil {
		return fmt.Errorf("compute repayment: %w", err)
	}

	fmt.Printf("Rate:     %d/%d\n", rate.Num, rate.Den)
	fmt.Printf("Borrowed: %s\n", plan.Borrowed.String())
	fmt.Printf("Premium:  %s\n", plan.Premium.String())
	fmt.Printf("Total:    %s\n", plan.Total.String())

	return nil
}
