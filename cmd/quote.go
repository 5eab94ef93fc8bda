package cmd

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ishita-02/The-DeFi-App/internal/quote"
	"github.com/Ishita-02/The-DeFi-App/pkg/config"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch a swap quote from the aggregator",
	Long: `Asks the aggregator for a quote without building or settling
anything. Amounts are base units (wei-style), exactly what would be
flash-loaned.`,
	RunE: runQuote,
}

var (
	quoteInput  string
	quoteOutput string
	quoteAmount string
	quoteUser   string
)

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteInput, "input", "", "Input token address")
	quoteCmd.Flags().StringVar(&quoteOutput, "output", "", "Output token address")
	quoteCmd.Flags().StringVar(&quoteAmount, "amount", "", "Input amount in base units")
	quoteCmd.Flags().StringVar(&quoteUser, "user", "", "Address receiving the swap output")

	_ = quoteCmd.MarkFlagRequired("input")
	_ = quoteCmd.MarkFlagRequired("output")
	_ = quoteCmd.MarkFlagRequired("amount")
	_ = quoteCmd.MarkFlagRequired("user")
}

func runQuote(cmd *cobra.Command, args []string) error {
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

	amount, ok := new(big.Int).SetString(quoteAmount, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", quoteAmount)
	}

	client := quote.NewClient(&quote.Config{
		BaseURL:       cfg.AggregatorURL,
		APIKey:        cfg.AggregatorAPIKey,
		IntegratorPID: cfg.AggregatorPID,
		ChainID:       cfg.AggregatorChainID,
		Timeout:       cfg.QuoteTimeout,
		Logger:        logger,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	user := common.HexToAddress(quoteUser)
	result, err := client.GetQuote(ctx, &quote.Request{
		InputToken:     common.HexToAddress(quoteInput),
		OutputToken:    common.HexToAddress(quoteOutput),
		InputAmount:    amount,
		UserAddress:    user,
		OutputReceiver: user,
	})
	if err != nil {
		return fmt.Errorf("get quote: %w", err)
	}

	fmt.Printf("Output amount: %s\n", result.OutputAmount.String())
	fmt.Printf("Router:        %s\n", result.Router.Hex())
	fmt.Printf("Calldata:      %d bytes\n", len(result.CallPayload))

	return nil
}
