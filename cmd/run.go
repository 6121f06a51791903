package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"github.com/coffeestats/coffee-trade-etl/internal/config"
	"github.com/coffeestats/coffee-trade-etl/internal/db"
	"github.com/coffeestats/coffee-trade-etl/internal/kafka"
	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/internal/persistence"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
	"github.com/coffeestats/coffee-trade-etl/internal/report"
	"github.com/coffeestats/coffee-trade-etl/internal/storage"
	"github.com/coffeestats/coffee-trade-etl/internal/types"
)

type runOptions struct {
	dataDir      string
	nameTemplate string
	from         int
	to           int
	mode         string
	topN         int
	outputDir    string
	table        string
	ifExists     string
	load         bool
	charts       bool
	xlsx         bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the coffee trade pipeline over a range of years",
	Long:  "Discover, clean and aggregate the yearly trade files, write the report artifacts and optionally load the cleaned table and publish the run.",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := executeRun(cmd.Context(), config.GetConfig(), runOpts); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func (o runOptions) pipelineOptions() (pipeline.Options, error) {
	mode, err := pipeline.ParseMode(o.mode)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		DataDir:      o.dataDir,
		NameTemplate: o.nameTemplate,
		YearStart:    o.from,
		YearEnd:      o.to,
		Mode:         mode,
		TopN:         o.topN,
	}, nil
}

// executeRun runs the pipeline and every configured sink in order. The first
// failing sink aborts the run.
func executeRun(ctx context.Context, cfg *config.Config, o runOptions) (*pipeline.Result, error) {
	log := logging.GetLogger()
	popts, err := o.pipelineOptions()
	if err != nil {
		return nil, err
	}
	policy, err := persistence.ParsePolicy(o.ifExists)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Run(popts)
	if err != nil {
		return nil, err
	}

	artifacts, err := report.WriteArtifacts(res, o.outputDir, report.Options{Charts: o.charts, Workbook: o.xlsx})
	if err != nil {
		return res, fmt.Errorf("unable to write report artifacts: %w", err)
	}

	table := ""
	if o.load && !res.Empty {
		gdb, err := db.Open(cfg)
		if err != nil {
			return res, err
		}
		loader := persistence.NewLoader(gdb, cfg.DBBatch, res.RunID)
		if _, err := loader.Load(res.Cleaned, o.table, policy); err != nil {
			return res, err
		}
		table = o.table
	}

	if cfg.S3Bucket != "" && len(artifacts) > 0 {
		uploader, err := storage.NewUploader(cfg, res.RunID)
		if err != nil {
			return res, err
		}
		if _, err := uploader.UploadAll(ctx, artifacts); err != nil {
			return res, err
		}
	}

	if cfg.ReportTopic != "" {
		defer kafka.Close()
		if err := kafka.PublishRunEvent(newRunEvent(res, popts, table, artifacts), cfg.ReportTopic); err != nil {
			return res, fmt.Errorf("unable to publish run event: %w", err)
		}
	}

	if cfg.PushgatewayURL != "" {
		if err := pushMetrics(cfg.PushgatewayURL, res.RunID); err != nil {
			log.Errorf("unable to push metrics: %v", err)
		}
	}
	return res, nil
}

func newRunEvent(res *pipeline.Result, opts pipeline.Options, table string, artifacts []string) types.RunEvent {
	return types.RunEvent{
		Run_id:       res.RunID,
		Mode:         string(res.Mode),
		Year_start:   opts.YearStart,
		Year_end:     opts.YearEnd,
		Files:        res.Files,
		Missed_years: res.MissedYears,
		Empty:        res.Empty,
		Raw_rows:     res.RawRows,
		Clean_rows:   res.Cleaned.Nrow(),
		Table:        table,
		Artifacts:    artifacts,
		Finished_at:  res.FinishedAt,
	}
}

func pushMetrics(url, runID string) error {
	return push.New(url, "coffeetrade").
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run_id", runID).
		Push()
}

func init() {
	cfg := config.GetConfig()
	flags := runCmd.Flags()
	flags.StringVar(&runOpts.dataDir, "data-dir", cfg.DataDir, "Directory holding the yearly trade CSV files")
	flags.StringVar(&runOpts.nameTemplate, "name-template", cfg.NameTemplate, "File name prefix of the trade CSV files")
	flags.IntVar(&runOpts.from, "from", cfg.YearStart, "First year to process")
	flags.IntVar(&runOpts.to, "to", cfg.YearEnd, "Last year to process")
	flags.StringVar(&runOpts.mode, "mode", cfg.PipelineMode, "Output schema, raw or report")
	flags.IntVar(&runOpts.topN, "top-n", cfg.TopN, "Partners kept per year, 0 for the mode default")
	flags.StringVarP(&runOpts.outputDir, "output-dir", "o", cfg.OutputDir, "Path to output directory")
	flags.StringVar(&runOpts.table, "table", cfg.DBTable, "Table the cleaned records are loaded into")
	flags.StringVar(&runOpts.ifExists, "if-exists", cfg.DBIfExists, "What to do when the table exists: fail, replace or append")
	flags.BoolVar(&runOpts.load, "load", false, "Load the cleaned records into the database")
	flags.BoolVar(&runOpts.charts, "charts", true, "Render bar chart PNGs")
	flags.BoolVar(&runOpts.xlsx, "xlsx", false, "Write an xlsx workbook of the aggregates")
	rootCmd.AddCommand(runCmd)
}
