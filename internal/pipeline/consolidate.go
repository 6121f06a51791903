package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	ColPeriod       = "Period"
	colReporterDesc = "ReporterDesc"
	colPartnerDesc  = "PartnerDesc"
)

// ConsolidationOrder is the row order of every consolidated table.
var ConsolidationOrder = []string{ColPeriod, colReporterDesc, colPartnerDesc}

// Consolidate concatenates raw batches (union of columns, missing cells NaN)
// and sorts the result by Period, ReporterDesc and PartnerDesc. No batches
// yields the zero-value DataFrame, see IsEmpty.
func Consolidate(batches []dataframe.DataFrame) (dataframe.DataFrame, error) {
	if len(batches) == 0 {
		log.Info("no files were processed")
		return dataframe.DataFrame{}, nil
	}

	df := batches[0]
	for _, b := range batches[1:] {
		df = df.Concat(b)
	}
	if df.Err != nil {
		return df, fmt.Errorf("unable to concatenate trade files: %w", df.Err)
	}

	if hasColumn(df, ColPeriod) && df.Col(ColPeriod).Type() != series.Int {
		df = df.Mutate(series.New(df.Col(ColPeriod), series.Int, ColPeriod))
	}

	df = sortRows(df, ConsolidationOrder)
	if df.Err != nil {
		return df, fmt.Errorf("unable to sort trade records: %w", df.Err)
	}
	return df, nil
}

func sortRows(df dataframe.DataFrame, keys []string) dataframe.DataFrame {
	present, _ := splitColumns(df, keys)
	if len(present) == 0 || df.Nrow() < 2 {
		return df
	}
	order := make([]dataframe.Order, len(present))
	for i, k := range present {
		order[i] = dataframe.Sort(k)
	}
	return df.Arrange(order...)
}
