package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTradeFile(t, dir, "ImportsExports_Coffee_BRA_WORLD_2020.csv",
		trade{2020, "BRA", "Brazil", FlowExport, "USA", "USA", GreenCoffeeCode, 250, 1000},
		trade{2020, "BRA", "Brazil", FlowImport, "COL", "Colombia", GreenCoffeeCode, 100, 300},
		trade{2020, "BRA", "Brazil", FlowExport, "XXX", "Areas, nes", GreenCoffeeCode, 5, 10},
	)
	writeTradeFile(t, dir, "ImportsExports_Coffee_VNM_WORLD_2021.csv",
		trade{2021, "VNM", "Viet Nam", FlowExport, "DEU", "Germany", GreenCoffeeCode, 900, 1800},
		trade{2021, "VNM", "Viet Nam", FlowExport, "JPN", "Japan", 90121, 40, 400},
	)
	return dir
}

func TestRunRawMode(t *testing.T) {
	res, err := Run(Options{
		DataDir:      writeFixtureTree(t),
		NameTemplate: "ImportsExports_Coffee",
		YearStart:    2019,
		YearEnd:      2021,
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if res.Empty {
		t.Fatal("run over existing files reported no data")
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if diff := cmp.Diff([]int{2019}, res.MissedYears); diff != "" {
		t.Errorf("missed years mismatch (-want +got):\n%s", diff)
	}
	if len(res.Files) != 2 || res.RawRows != 5 {
		t.Errorf("expected 2 files and 5 raw rows, got %d and %d", len(res.Files), res.RawRows)
	}
	if res.Cleaned.Nrow() != 4 || res.Stats.Removed != 1 {
		t.Errorf("expected one invalid partner removed, got %d rows, stats %+v", res.Cleaned.Nrow(), res.Stats)
	}
	if diff := cmp.Diff([]string{"2020", "2020", "2021", "2021"}, mustColumn(t, res.Cleaned, ColYear)); diff != "" {
		t.Errorf("cleaned rows should be ordered by period (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([][]float64{{2020, 100, 250, 150}, {2021, 0, 900, 900}}, rowsAsFloats(res.Production)); diff != "" {
		t.Errorf("production mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"COL"}, mustColumn(t, res.TopImports, ColPartnerISO)); diff != "" {
		t.Errorf("top imports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"USA", "DEU", "JPN"}, mustColumn(t, res.TopExports, ColPartnerISO)); diff != "" {
		t.Errorf("top exports mismatch (-want +got):\n%s", diff)
	}
	if res.Totals.Nrow() != 4 {
		t.Errorf("expected 4 totals groups, got %d", res.Totals.Nrow())
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Error("run finished before it started")
	}
}

func TestRunReportMode(t *testing.T) {
	res, err := Run(Options{
		DataDir:      writeFixtureTree(t),
		NameTemplate: "ImportsExports_Coffee",
		YearStart:    2020,
		YearEnd:      2021,
		Mode:         ModeReport,
		TopN:         1,
	})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !hasColumn(res.Cleaned, ColProductType) || !hasColumn(res.Cleaned, ColTradeType) {
		t.Errorf("report columns missing: %v", res.Cleaned.Names())
	}
	if diff := cmp.Diff([]string{"United States", "Germany"}, mustColumn(t, res.TopExports, ColPartnerName)); diff != "" {
		t.Errorf("top exports mismatch (-want +got):\n%s", diff)
	}
}

func TestRunEmptyRange(t *testing.T) {
	res, err := Run(Options{
		DataDir:      writeFixtureTree(t),
		NameTemplate: "ImportsExports_Coffee",
		YearStart:    2010,
		YearEnd:      2012,
	})
	if err != nil {
		t.Fatalf("an empty range must not fail: %v", err)
	}
	if !res.Empty {
		t.Error("expected Empty to be set")
	}
	if !IsEmpty(res.Cleaned) || !IsEmpty(res.Production) {
		t.Error("expected schema-less tables for an empty run")
	}
	if diff := cmp.Diff([]int{2010, 2011, 2012}, res.MissedYears); diff != "" {
		t.Errorf("missed years mismatch (-want +got):\n%s", diff)
	}
}

func TestRunHeaderOnlyFile(t *testing.T) {
	dir := t.TempDir()
	writeTradeFile(t, dir, "ImportsExports_Coffee_BRA_WORLD_2020.csv")
	res, err := Run(Options{DataDir: dir, NameTemplate: "ImportsExports_Coffee", YearStart: 2020, YearEnd: 2020})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if res.Empty {
		t.Error("a header-only file is a zero-row table, not an empty run")
	}
	if res.Cleaned.Nrow() != 0 || IsEmpty(res.Cleaned) {
		t.Errorf("expected a zero-row table with columns, got %dx%d", res.Cleaned.Nrow(), res.Cleaned.Ncol())
	}
}

func TestRunInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing data dir", Options{NameTemplate: "x", YearStart: 2020, YearEnd: 2020}},
		{"reversed range", Options{DataDir: "d", NameTemplate: "x", YearStart: 2021, YearEnd: 2020}},
		{"unknown mode", Options{DataDir: "d", NameTemplate: "x", YearStart: 2020, YearEnd: 2020, Mode: "pretty"}},
		{"negative top n", Options{DataDir: "d", NameTemplate: "x", YearStart: 2020, YearEnd: 2020, TopN: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(tt.opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeRaw, "raw": ModeRaw, "report": ModeReport} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("pretty"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
