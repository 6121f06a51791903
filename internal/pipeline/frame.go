package pipeline

import (
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Rename maps an incoming column name to the name used downstream.
type Rename struct {
	From string
	To   string
}

// IsEmpty reports whether df carries no schema at all. This is the "no data"
// signal, distinct from a table that has columns but zero rows.
func IsEmpty(df dataframe.DataFrame) bool {
	return df.Err == nil && df.Ncol() == 0
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	return slices.Contains(df.Names(), name)
}

// splitColumns partitions names into those df has and those it lacks.
func splitColumns(df dataframe.DataFrame, names []string) (present, missing []string) {
	present, missing = []string{}, []string{}
	for _, n := range names {
		if hasColumn(df, n) {
			present = append(present, n)
		} else {
			missing = append(missing, n)
		}
	}
	return present, missing
}

func applyRenames(df dataframe.DataFrame, renames []Rename) (dataframe.DataFrame, int) {
	applied := 0
	for _, r := range renames {
		if hasColumn(df, r.From) && !hasColumn(df, r.To) {
			df = df.Rename(r.To, r.From)
			applied++
		}
	}
	return df, applied
}

// emptyFrame builds a zero-row table with the given schema.
func emptyFrame(names []string, types []series.Type) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = series.New([]string{}, types[i], n)
	}
	return dataframe.New(cols...)
}

// zeroFilledFloats converts s to a Float series where missing or unparsable
// values become 0, so that sums skip them.
func zeroFilledFloats(s series.Series) series.Series {
	vals := s.Float()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = 0
		}
	}
	return series.New(vals, series.Float, s.Name)
}

// dropMissingKeys removes rows with a missing value in any of keys.
func dropMissingKeys(df dataframe.DataFrame, keys []string) dataframe.DataFrame {
	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}
	dropped := false
	for _, k := range keys {
		for i, na := range df.Col(k).IsNaN() {
			if na {
				keep[i] = false
				dropped = true
			}
		}
	}
	if !dropped {
		return df
	}
	return df.Subset(keep)
}

// headPerGroup keeps the first n rows of every run of equal values in col.
// df is expected to be sorted by col already.
func headPerGroup(df dataframe.DataFrame, col string, n int) dataframe.DataFrame {
	if df.Err != nil || df.Nrow() == 0 {
		return df
	}
	values := df.Col(col).Records()
	idx := []int{}
	seen := 0
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			seen = 0
		}
		if seen < n {
			idx = append(idx, i)
		}
		seen++
	}
	return df.Subset(idx)
}
