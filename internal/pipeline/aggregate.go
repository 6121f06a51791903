package pipeline

import (
	"fmt"
	"slices"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	FlowImport = "Import"
	FlowExport = "Export"

	ColImports    = "Imports"
	ColExports    = "Exports"
	ColProduction = "Production"
)

// Aggregator computes the summary tables of a cleaned or enriched table.
type Aggregator struct {
	Columns Columns
}

func NewAggregator(mode Mode) *Aggregator {
	return &Aggregator{Columns: mode.Columns()}
}

// TopNByFlow filters rows of one flow, sums quantity and value per
// (Year, groupKeys...) and keeps the n largest quantities of every year.
// Equal quantities are ordered by the group keys ascending.
func (a *Aggregator) TopNByFlow(df dataframe.DataFrame, flow string, n int, groupKeys ...string) (dataframe.DataFrame, error) {
	if n <= 0 {
		return dataframe.DataFrame{}, fmt.Errorf("top n must be positive, got %d", n)
	}
	keys := append([]string{a.Columns.Year}, groupKeys...)
	measures := []string{a.Columns.Quantity, a.Columns.Value}
	if df.Err != nil {
		return df, df.Err
	}
	if IsEmpty(df) || df.Nrow() == 0 {
		return emptyAggregate(df, keys, measures), nil
	}
	if !hasColumn(df, a.Columns.Flow) {
		return dataframe.DataFrame{}, fmt.Errorf("missing column %s", a.Columns.Flow)
	}

	filtered := df.Filter(dataframe.F{Colname: a.Columns.Flow, Comparator: series.Eq, Comparando: flow})
	if filtered.Err != nil {
		return filtered, filtered.Err
	}
	agg, err := sumBy(filtered, keys, measures)
	if err != nil || agg.Nrow() == 0 {
		return agg, err
	}

	order := []dataframe.Order{dataframe.Sort(a.Columns.Year), dataframe.RevSort(a.Columns.Quantity)}
	for _, k := range groupKeys {
		order = append(order, dataframe.Sort(k))
	}
	agg = agg.Arrange(order...)
	if agg.Err != nil {
		return agg, agg.Err
	}
	return headPerGroup(agg, a.Columns.Year, n), nil
}

func (a *Aggregator) TopImporters(df dataframe.DataFrame, n int) (dataframe.DataFrame, error) {
	return a.TopNByFlow(df, FlowImport, n, a.Columns.PartnerKeys...)
}

func (a *Aggregator) TopExporters(df dataframe.DataFrame, n int) (dataframe.DataFrame, error) {
	return a.TopNByFlow(df, FlowExport, n, a.Columns.PartnerKeys...)
}

// EstimatedProduction sums green coffee quantity per year and flow and
// derives Production = Exports - Imports. A missing flow counts as 0, so
// the result may be negative for net importing years. Flows other than
// Import and Export are ignored.
func (a *Aggregator) EstimatedProduction(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	schema := []string{ColYear, ColImports, ColExports, ColProduction}
	types := []series.Type{series.Int, series.Float, series.Float, series.Float}
	if df.Err != nil {
		return df, df.Err
	}
	if IsEmpty(df) || df.Nrow() == 0 {
		return emptyFrame(schema, types), nil
	}
	if !hasColumn(df, ColCmdCode) {
		return dataframe.DataFrame{}, fmt.Errorf("missing column %s", ColCmdCode)
	}

	green := df.Filter(dataframe.F{Colname: ColCmdCode, Comparator: series.Eq, Comparando: GreenCoffeeCode})
	if green.Err != nil {
		return green, green.Err
	}
	agg, err := sumBy(green, []string{a.Columns.Year, a.Columns.Flow}, []string{a.Columns.Quantity})
	if err != nil {
		return agg, err
	}

	type totals struct{ imports, exports float64 }
	byYear := map[int]*totals{}
	for i := 0; i < agg.Nrow(); i++ {
		year, err := agg.Col(a.Columns.Year).Elem(i).Int()
		if err != nil {
			continue
		}
		t, ok := byYear[year]
		if !ok {
			t = &totals{}
			byYear[year] = t
		}
		qty := agg.Col(a.Columns.Quantity).Elem(i).Float()
		switch agg.Col(a.Columns.Flow).Elem(i).String() {
		case FlowImport:
			t.imports += qty
		case FlowExport:
			t.exports += qty
		}
	}
	if len(byYear) == 0 {
		return emptyFrame(schema, types), nil
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	imports := make([]float64, len(years))
	exports := make([]float64, len(years))
	production := make([]float64, len(years))
	for i, y := range years {
		imports[i] = byYear[y].imports
		exports[i] = byYear[y].exports
		production[i] = exports[i] - imports[i]
	}
	out := dataframe.New(
		series.New(years, series.Int, ColYear),
		series.New(imports, series.Float, ColImports),
		series.New(exports, series.Float, ColExports),
		series.New(production, series.Float, ColProduction),
	)
	return out, out.Err
}

// GroupedTotals sums quantity and value per group, ordered by the keys.
// Without keys the mode's totals keys (Period, FlowCode, CmdCode) are used.
func (a *Aggregator) GroupedTotals(df dataframe.DataFrame, groupKeys ...string) (dataframe.DataFrame, error) {
	if len(groupKeys) == 0 {
		groupKeys = a.Columns.TotalsKeys
	}
	agg, err := sumBy(df, groupKeys, []string{a.Columns.Quantity, a.Columns.Value})
	if err != nil {
		return agg, err
	}
	agg = sortRows(agg, groupKeys)
	return agg, agg.Err
}

// sumBy groups df by keys and sums measures. Rows with a missing key are not
// grouped and missing measure values count as 0.
func sumBy(df dataframe.DataFrame, keys, measures []string) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	if IsEmpty(df) || df.Nrow() == 0 {
		return emptyAggregate(df, keys, measures), nil
	}
	columns := append(slices.Clone(keys), measures...)
	if _, missing := splitColumns(df, columns); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("missing columns %v", missing)
	}

	df = df.Select(columns)
	for _, m := range measures {
		col := df.Col(m)
		if col.Type() != series.Float || col.HasNaN() {
			df = df.Mutate(zeroFilledFloats(col))
		}
	}
	df = dropMissingKeys(df, keys)
	if df.Err != nil {
		return df, df.Err
	}
	if df.Nrow() == 0 {
		return emptyAggregate(df, keys, measures), nil
	}

	groups := df.GroupBy(keys...)
	if groups.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("unable to group by %v: %w", keys, groups.Err)
	}
	aggTypes := make([]dataframe.AggregationType, len(measures))
	for i := range aggTypes {
		aggTypes[i] = dataframe.Aggregation_SUM
	}
	agg := groups.Aggregation(aggTypes, measures)
	for i, m := range measures {
		agg = agg.Rename(m, fmt.Sprintf("%s_%s", m, aggTypes[i]))
	}
	agg = agg.Select(columns)
	if agg.Err != nil {
		return agg, fmt.Errorf("unable to aggregate %v: %w", measures, agg.Err)
	}
	return agg, nil
}

// emptyAggregate is the zero-row result for keys and measures, keeping the
// key types of df where known.
func emptyAggregate(df dataframe.DataFrame, keys, measures []string) dataframe.DataFrame {
	names := append(slices.Clone(keys), measures...)
	types := make([]series.Type, len(names))
	for i, k := range keys {
		types[i] = series.String
		if hasColumn(df, k) {
			types[i] = df.Col(k).Type()
		}
	}
	for i := range measures {
		types[len(keys)+i] = series.Float
	}
	return emptyFrame(names, types)
}
