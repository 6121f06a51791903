package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/countries"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

var validateCmd = &cobra.Command{Use: "validate", Short: "Validate coffee trade data"}

var validateCSV = &cobra.Command{
	Use:   "csv [input csv file path]",
	Short: "Validate one trade CSV file",
	Long:  "Ingest and clean one trade CSV file and report how many records survive cleaning",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input_file := args[0]
		if _, err := os.Stat(input_file); os.IsNotExist(err) {
			fmt.Printf("CSV file: %s does not exist\n", input_file)
			os.Exit(1)
		}
		summary, err := validateFile(input_file)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(summary)
	},
}

func validateFile(path string) (string, error) {
	raw, err := pipeline.Ingest(path)
	if err != nil {
		return "", err
	}
	ref, err := countries.Default()
	if err != nil {
		return "", err
	}
	cleaned, stats, err := pipeline.NewCleaner(ref).Clean(raw)
	if err != nil {
		return "", err
	}
	if cleaned.Nrow() == 0 {
		return fmt.Sprintf("No valid trade records found in %s (%d rows read)\n", path, raw.Nrow()), nil
	}
	return fmt.Sprintf("Number of valid trade records - %d of %d (renamed %d, dropped %d columns, corrected %d, removed %d)\n",
		cleaned.Nrow(), raw.Nrow(), stats.Renamed, stats.Dropped, stats.Corrected, stats.Removed), nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.AddCommand(validateCSV)
}
