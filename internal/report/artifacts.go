package report

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"

	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

var log *logrus.Logger = logging.GetLogger()

// WriteCSV writes df with a header row in its column order.
func WriteCSV(df dataframe.DataFrame, path string) error {
	if df.Err != nil {
		return df.Err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return f.Close()
}

// Options selects which artifacts WriteArtifacts produces besides the CSVs.
type Options struct {
	Charts   bool
	Workbook bool
}

type table struct {
	name  string
	title string
	df    dataframe.DataFrame
}

// WriteArtifacts writes the cleaned table and every aggregate of res to dir
// and returns the written paths. An empty run writes nothing.
func WriteArtifacts(res *pipeline.Result, dir string, opts Options) ([]string, error) {
	if res.Empty {
		log.Warn("no trade data, skipping report artifacts")
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tables := []table{
		{"top_imports", "Top coffee importers per year", res.TopImports},
		{"top_exports", "Top coffee exporters per year", res.TopExports},
		{"estimated_production", "Estimated green coffee production", res.Production},
		{"grouped_totals", "Coffee trade totals", res.Totals},
	}
	var written []string

	if err := writeFile(filepath.Join(dir, "cleaned.csv"), &written, func(p string) error {
		return WriteCSV(res.Cleaned, p)
	}); err != nil {
		return written, err
	}
	for _, t := range tables {
		if err := writeFile(filepath.Join(dir, t.name+".csv"), &written, func(p string) error {
			return WriteCSV(t.df, p)
		}); err != nil {
			return written, err
		}
	}

	if opts.Charts {
		groupCol := res.Mode.Columns().PartnerKeys[0]
		for _, t := range tables[:2] {
			if t.df.Nrow() == 0 || !slices.Contains(t.df.Names(), groupCol) {
				continue
			}
			if err := writeFile(filepath.Join(dir, t.name+".png"), &written, func(p string) error {
				return BarChart(t.df, groupCol, pipeline.ColQuantity, t.title, p)
			}); err != nil {
				return written, err
			}
		}
		if res.Production.Nrow() > 0 {
			if err := writeFile(filepath.Join(dir, "estimated_production.png"), &written, func(p string) error {
				return ProductionChart(res.Production, tables[2].title, p)
			}); err != nil {
				return written, err
			}
		}
	}

	if opts.Workbook {
		sheets := []Sheet{
			{Name: "Top Imports", Table: res.TopImports},
			{Name: "Top Exports", Table: res.TopExports},
			{Name: "Estimated Production", Table: res.Production, ChartColumn: pipeline.ColProduction},
			{Name: "Grouped Totals", Table: res.Totals},
		}
		if err := writeFile(filepath.Join(dir, "coffee_trade_report.xlsx"), &written, func(p string) error {
			return Workbook(p, sheets)
		}); err != nil {
			return written, err
		}
	}

	log.WithFields(logrus.Fields{"run_id": res.RunID, "dir": dir, "files": len(written)}).Info("report artifacts written")
	return written, nil
}

func writeFile(path string, written *[]string, write func(string) error) error {
	if err := write(path); err != nil {
		return err
	}
	*written = append(*written, path)
	return nil
}
