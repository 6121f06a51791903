package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"

	"github.com/coffeestats/coffee-trade-etl/internal/countries"
)

var tradeHeader = []string{
	"TypeCode", "FreqCode", "RefPeriodId", "RefYear", "RefMonth", "Period",
	"ReporterCode", "ReporterISO", "ReporterDesc", "FlowCode", "FlowDesc",
	"PartnerCode", "PartnerISO", "PartnerDesc", "CmdCode", "CmdDesc",
	"Qty", "NetWgt", "PrimaryValue", "Cifvalue", "IsAggregate",
}

type trade struct {
	year         int
	reporterISO  string
	reporterDesc string
	flow         string
	partnerISO   string
	partnerDesc  string
	cmdCode      int
	qty          float64
	value        float64
}

func (tr trade) record() []string {
	flowCode := "M"
	if tr.flow == FlowExport {
		flowCode = "X"
	}
	year := strconv.Itoa(tr.year)
	qty := strconv.FormatFloat(tr.qty, 'f', -1, 64)
	return []string{
		"C", "A", year + "0101", year, "52", year,
		"76", tr.reporterISO, tr.reporterDesc, flowCode, tr.flow,
		"0", tr.partnerISO, tr.partnerDesc, strconv.Itoa(tr.cmdCode), "Coffee",
		qty, qty, strconv.FormatFloat(tr.value, 'f', -1, 64), "", "False",
	}
}

func tradeRecords(trades ...trade) [][]string {
	records := [][]string{append([]string{}, tradeHeader...)}
	for _, tr := range trades {
		records = append(records, tr.record())
	}
	return records
}

// rawFrame builds a table shaped like Ingest output.
func rawFrame(t *testing.T, trades ...trade) dataframe.DataFrame {
	t.Helper()
	df := dataframe.LoadRecords(
		tradeRecords(trades...),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		t.Fatalf("unable to build fixture: %v", df.Err)
	}
	return df
}

func writeTradeFile(t *testing.T, dir, name string, trades ...trade) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(tradeRecords(trades...)); err != nil {
		t.Fatal(err)
	}
	return path
}

func testReference() *countries.Reference {
	return countries.New(map[string]string{
		"BRA": "Brazil",
		"COL": "Colombia",
		"DEU": "Germany",
		"ETH": "Ethiopia",
		"ITA": "Italy",
		"JPN": "Japan",
		"USA": "United States",
		"VNM": "Viet Nam",
	})
}

func mustColumn(t *testing.T, df dataframe.DataFrame, name string) []string {
	t.Helper()
	if !hasColumn(df, name) {
		t.Fatalf("column %s not found in %v", name, df.Names())
	}
	return df.Col(name).Records()
}
