package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "leverager",
	Short: "Leveraged position builder and settlement service",
	Long: `Builds and settles flash-loan backed leveraged positions on a
lending pool.

A position request names a collateral token, a coin to borrow against it
and the amounts of each. The service flash-loans the coin, swaps it into
collateral through a swap aggregator, supplies the combined collateral to
the pool on behalf of the user and borrows enough of the coin to repay
the loan plus premium, all inside one atomic transaction.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
