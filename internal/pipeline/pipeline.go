package pipeline

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coffeestats/coffee-trade-etl/internal/countries"
	"github.com/coffeestats/coffee-trade-etl/internal/logging"
)

// Options describe one pipeline run. TopN 0 selects the mode default.
type Options struct {
	DataDir      string `validate:"required"`
	NameTemplate string `validate:"required"`
	YearStart    int    `validate:"required,gte=1900,lte=2100"`
	YearEnd      int    `validate:"required,gtefield=YearStart,lte=2100"`
	Mode         Mode   `validate:"oneof=raw report"`
	TopN         int    `validate:"gte=0,lte=100"`
}

// Result holds the cleaned table and every aggregate of a run. Empty is set
// when no file matched the year range; the tables are then schema-less.
type Result struct {
	RunID       string
	Mode        Mode
	Files       []string
	MissedYears []int
	Empty       bool
	RawRows     int
	Stats       CleanStats
	Cleaned     dataframe.DataFrame
	TopImports  dataframe.DataFrame
	TopExports  dataframe.DataFrame
	Production  dataframe.DataFrame
	Totals      dataframe.DataFrame
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Pipeline wires the stages together for one output mode.
type Pipeline struct {
	Mode       Mode
	Cleaner    *Cleaner
	Enricher   *Enricher
	Aggregator *Aggregator
}

// New builds a pipeline using the embedded country registry.
func New(mode Mode) (*Pipeline, error) {
	ref, err := countries.Default()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Mode:       mode,
		Cleaner:    NewCleaner(ref),
		Enricher:   NewEnricher(),
		Aggregator: NewAggregator(mode),
	}, nil
}

// Run discovers, ingests, consolidates, cleans and aggregates the files
// selected by opts.
func Run(opts Options) (*Result, error) {
	if opts.Mode == "" {
		opts.Mode = ModeRaw
	}
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid pipeline options: %w", err)
	}
	p, err := New(opts.Mode)
	if err != nil {
		return nil, err
	}
	return p.Run(opts)
}

func (p *Pipeline) Run(opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Mode: p.Mode, StartedAt: time.Now()}
	runLog := logging.WithRun(res.RunID)

	discovery, err := Discover(opts.DataDir, opts.NameTemplate, opts.YearStart, opts.YearEnd)
	if err != nil {
		return nil, err
	}
	res.Files = discovery.Files()
	res.MissedYears = discovery.Missed

	batches := make([]dataframe.DataFrame, 0, len(res.Files))
	for _, f := range res.Files {
		df, err := Ingest(f)
		if err != nil {
			return nil, fmt.Errorf("unable to ingest %s: %w", f, err)
		}
		batches = append(batches, df)
	}

	raw, err := Consolidate(batches)
	if err != nil {
		return nil, err
	}
	if IsEmpty(raw) {
		res.Empty = true
		res.FinishedAt = time.Now()
		runLog.WithFields(logrus.Fields{"missed_years": res.MissedYears}).Warn("no trade data found for the requested years")
		return res, nil
	}
	res.RawRows = raw.Nrow()

	if err := p.Process(raw, res, opts.TopN); err != nil {
		return nil, err
	}
	res.FinishedAt = time.Now()
	runLog.WithFields(logrus.Fields{
		"mode":         res.Mode,
		"files":        len(res.Files),
		"missed_years": res.MissedYears,
		"raw_rows":     res.RawRows,
		"clean_rows":   res.Cleaned.Nrow(),
		"removed_rows": res.Stats.Removed,
		"duration":     res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("pipeline run complete")
	return res, nil
}

// Process cleans (and in report mode enriches) a consolidated table and
// fills the aggregates of res.
func (p *Pipeline) Process(raw dataframe.DataFrame, res *Result, topN int) error {
	cleaned, stats, err := p.Cleaner.Clean(raw)
	if err != nil {
		return fmt.Errorf("unable to clean trade records: %w", err)
	}
	if p.Mode == ModeReport {
		cleaned, err = p.Enricher.Enrich(cleaned)
		if err != nil {
			return fmt.Errorf("unable to enrich trade records: %w", err)
		}
	}
	res.Stats = stats
	res.Cleaned = cleaned
	return p.Aggregate(res, topN)
}

// Aggregate computes every summary table from res.Cleaned.
func (p *Pipeline) Aggregate(res *Result, topN int) error {
	if topN <= 0 {
		topN = p.Aggregator.Columns.TopN
	}
	var err error
	if res.TopImports, err = p.Aggregator.TopImporters(res.Cleaned, topN); err != nil {
		return fmt.Errorf("unable to rank importers: %w", err)
	}
	if res.TopExports, err = p.Aggregator.TopExporters(res.Cleaned, topN); err != nil {
		return fmt.Errorf("unable to rank exporters: %w", err)
	}
	if res.Production, err = p.Aggregator.EstimatedProduction(res.Cleaned); err != nil {
		return fmt.Errorf("unable to estimate production: %w", err)
	}
	if res.Totals, err = p.Aggregator.GroupedTotals(res.Cleaned); err != nil {
		return fmt.Errorf("unable to compute grouped totals: %w", err)
	}
	return nil
}
