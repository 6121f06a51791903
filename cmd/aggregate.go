package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
	"github.com/coffeestats/coffee-trade-etl/internal/report"
)

var (
	aggregateOutputDir string
	aggregateMode      string
	aggregateTopN      int
	aggregateCmd       = &cobra.Command{
		Use:   "aggregate [cleaned csv file path]",
		Short: "aggregates an already cleaned trade CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			input_file := args[0]
			if _, err := os.Stat(input_file); os.IsNotExist(err) {
				fmt.Printf("CSV file: %s does not exist\n", input_file)
				os.Exit(1)
			}
			if aggregateOutputDir == "" {
				aggregateOutputDir, _ = os.Getwd()
			}
			written, err := aggregateFile(input_file, aggregateMode, aggregateTopN, aggregateOutputDir)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			for _, p := range written {
				fmt.Printf("Aggregated CSV created at: %s \n", p)
			}
		},
	}
)

// readCleaned loads a UTF-8 CSV written by a previous run with every column
// as text; cleaning types it again.
func readCleaned(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()
	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
	)
	return df, df.Err
}

func aggregateFile(path, modeName string, topN int, outputDir string) ([]string, error) {
	mode, err := pipeline.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	df, err := readCleaned(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	// restores the Period type and row order of a consolidated table
	df, err = pipeline.Consolidate([]dataframe.DataFrame{df})
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(mode)
	if err != nil {
		return nil, err
	}
	res := &pipeline.Result{RunID: uuid.NewString(), Mode: mode, Files: []string{path}, RawRows: df.Nrow(), StartedAt: time.Now()}
	if err := p.Process(df, res, topN); err != nil {
		return nil, err
	}
	res.FinishedAt = time.Now()
	return report.WriteArtifacts(res, outputDir, report.Options{})
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateOutputDir, "output-dir", "o", "", "Path to output directory")
	aggregateCmd.Flags().StringVar(&aggregateMode, "mode", string(pipeline.ModeRaw), "Schema of the cleaned file, raw or report")
	aggregateCmd.Flags().IntVar(&aggregateTopN, "top-n", 0, "Partners kept per year, 0 for the mode default")
	rootCmd.AddCommand(aggregateCmd)
}
