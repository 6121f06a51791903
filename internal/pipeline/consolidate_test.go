package pipeline

import (
	"sort"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
)

func sortedRows(df dataframe.DataFrame) []string {
	rows := []string{}
	for _, r := range df.Records()[1:] {
		rows = append(rows, strings.Join(r, "|"))
	}
	sort.Strings(rows)
	return rows
}

func TestConsolidateEmpty(t *testing.T) {
	df, err := Consolidate(nil)
	if err != nil {
		t.Fatalf("Consolidate(nil) returned error: %v", err)
	}
	if !IsEmpty(df) {
		t.Errorf("expected a schema-less table, got columns %v", df.Names())
	}
}

func TestConsolidateSortsRows(t *testing.T) {
	a := rawFrame(t,
		trade{2021, "BRA", "Brazil", FlowExport, "USA", "USA", 90111, 10, 1},
		trade{2019, "BRA", "Brazil", FlowExport, "ITA", "Italy", 90111, 20, 2},
	)
	b := rawFrame(t,
		trade{2019, "COL", "Colombia", FlowExport, "JPN", "Japan", 90111, 30, 3},
		trade{2019, "BRA", "Brazil", FlowExport, "DEU", "Germany", 90111, 40, 4},
		trade{2020, "ETH", "Ethiopia", FlowExport, "DEU", "Germany", 90111, 50, 5},
	)

	df, err := Consolidate([]dataframe.DataFrame{a, b})
	if err != nil {
		t.Fatalf("Consolidate() returned error: %v", err)
	}
	if df.Nrow() != 5 {
		t.Fatalf("expected 5 rows, got %d", df.Nrow())
	}
	if df.Col("Period").Type() != series.Int {
		t.Errorf("Period should be typed as int, got %v", df.Col("Period").Type())
	}

	want := [][]string{
		{"2019", "Brazil", "Germany"},
		{"2019", "Brazil", "Italy"},
		{"2019", "Colombia", "Japan"},
		{"2020", "Ethiopia", "Germany"},
		{"2021", "Brazil", "USA"},
	}
	got := [][]string{}
	sorted := df.Select(ConsolidationOrder)
	got = append(got, sorted.Records()[1:]...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row order mismatch (-want +got):\n%s", diff)
	}

	reversed, err := Consolidate([]dataframe.DataFrame{b, a})
	if err != nil {
		t.Fatalf("Consolidate() returned error: %v", err)
	}
	if diff := cmp.Diff(sortedRows(df), sortedRows(reversed.Select(df.Names()))); diff != "" {
		t.Errorf("content depends on input order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, reversed.Select(ConsolidationOrder).Records()[1:]); diff != "" {
		t.Errorf("row order depends on input order (-want +got):\n%s", diff)
	}
}

func TestConsolidateNumericPeriod(t *testing.T) {
	a := dataframe.LoadRecords([][]string{{"Period", "ReporterDesc"}, {"202110", "Brazil"}, {"20219", "Brazil"}}, dataframe.DetectTypes(false))
	df, err := Consolidate([]dataframe.DataFrame{a})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"20219", "202110"}, df.Col("Period").Records()); diff != "" {
		t.Errorf("Period should sort numerically (-want +got):\n%s", diff)
	}
}

func TestConsolidateUnionOfColumns(t *testing.T) {
	a := dataframe.LoadRecords([][]string{{"Period", "Qty"}, {"2019", "1"}}, dataframe.DetectTypes(false))
	b := dataframe.LoadRecords([][]string{{"Period", "Cifvalue"}, {"2020", "9"}}, dataframe.DetectTypes(false))
	df, err := Consolidate([]dataframe.DataFrame{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Period", "Qty", "Cifvalue"}, df.Names()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if !df.Col("Qty").Elem(1).IsNA() || !df.Col("Cifvalue").Elem(0).IsNA() {
		t.Error("cells of columns missing from a batch should be NaN")
	}
}
