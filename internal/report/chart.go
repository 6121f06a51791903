package report

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 6 * vg.Inch
	groupWidth  = 48.0
)

// barSeries is one colored bar per category.
type barSeries struct {
	Label  string
	Values []float64
}

// BarChart renders valueCol of a (Year, groupCol, ...) table as a grouped
// bar chart PNG: one group of bars per year, one bar per groupCol value.
// Absent (year, group) pairs are drawn as 0.
func BarChart(df dataframe.DataFrame, groupCol, valueCol, title, path string) error {
	if err := requireColumns(df, yearColumn, groupCol, valueCol); err != nil {
		return err
	}
	if df.Nrow() == 0 {
		return fmt.Errorf("no rows to plot for %q", title)
	}

	years, yearIdx, err := distinctYears(df)
	if err != nil {
		return err
	}
	groups := df.Col(groupCol).Records()
	values := df.Col(valueCol).Float()

	var series []*barSeries
	byGroup := map[string]*barSeries{}
	for i, g := range groups {
		s, ok := byGroup[g]
		if !ok {
			s = &barSeries{Label: g, Values: make([]float64, len(years))}
			byGroup[g] = s
			series = append(series, s)
		}
		year, _ := df.Col(yearColumn).Elem(i).Int()
		if !math.IsNaN(values[i]) {
			s.Values[yearIdx[year]] += values[i]
		}
	}
	return renderBars(title, valueCol, yearLabels(years), series, path)
}

// ProductionChart renders the Imports, Exports and Production columns of an
// estimated production table side by side per year.
func ProductionChart(df dataframe.DataFrame, title, path string) error {
	measures := []string{"Imports", "Exports", "Production"}
	if err := requireColumns(df, append([]string{yearColumn}, measures...)...); err != nil {
		return err
	}
	if df.Nrow() == 0 {
		return fmt.Errorf("no rows to plot for %q", title)
	}
	years, _, err := distinctYears(df)
	if err != nil {
		return err
	}
	series := make([]*barSeries, len(measures))
	for i, m := range measures {
		series[i] = &barSeries{Label: m, Values: zeroNaN(df.Col(m).Float())}
	}
	return renderBars(title, "Qty_in_kg", yearLabels(years), series, path)
}

func renderBars(title, yLabel string, categories []string, series []*barSeries, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = yearColumn
	p.Y.Label.Text = yLabel
	p.Legend.Top = true

	width := vg.Points(groupWidth / float64(len(series)))
	for i, s := range series {
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return fmt.Errorf("unable to build bars for %s: %w", s.Label, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * width
		p.Add(bars)
		p.Legend.Add(s.Label, bars)
	}
	p.NominalX(categories...)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("unable to save chart %s: %w", path, err)
	}
	return nil
}

// distinctYears returns the sorted years of df and their positions.
func distinctYears(df dataframe.DataFrame) ([]int, map[int]int, error) {
	col := df.Col(yearColumn)
	seen := map[int]bool{}
	years := []int{}
	for i := 0; i < col.Len(); i++ {
		y, err := col.Elem(i).Int()
		if err != nil {
			return nil, nil, fmt.Errorf("invalid year at row %d: %w", i, err)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	idx := make(map[int]int, len(years))
	for i, y := range years {
		idx[y] = i
	}
	return years, idx, nil
}

func yearLabels(years []int) []string {
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	return labels
}

func zeroNaN(vals []float64) []float64 {
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = 0
		}
	}
	return vals
}

func requireColumns(df dataframe.DataFrame, names ...string) error {
	if df.Err != nil {
		return df.Err
	}
	for _, n := range names {
		if !slices.Contains(df.Names(), n) {
			return fmt.Errorf("missing column %s", n)
		}
	}
	return nil
}
