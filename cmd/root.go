package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "coffeetrade",
	Short: "coffeetrade - command line utility to clean, aggregate and report coffee trade data",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(logging.InitLogger)
}
