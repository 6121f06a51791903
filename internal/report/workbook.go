package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const (
	yearColumn       = "Year"
	defaultSheet     = "Sheet1"
	maxSheetName     = 31
	headerColorFill  = "#6F4E37"
	headerColorFont  = "#FFFFFF"
	defaultColWidth  = 18
	chartOffsetCols  = 2
	workbookChartCol = "Qty_in_kg"
)

// Sheet is one table of a workbook. ChartColumn, when present in the table
// together with Year, gets a native column chart next to the data.
type Sheet struct {
	Name        string
	Table       dataframe.DataFrame
	ChartColumn string
}

// Workbook writes every sheet to a new xlsx file at path. Sheets without
// columns are skipped.
func Workbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerColorFont},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColorFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("unable to create header style: %w", err)
	}

	written := 0
	for _, s := range sheets {
		if s.Table.Ncol() == 0 {
			continue
		}
		name := s.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("unable to create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, s.Table, headerStyle); err != nil {
			return err
		}
		chartCol := s.ChartColumn
		if chartCol == "" {
			chartCol = workbookChartCol
		}
		if err := addChart(f, name, s.Table, chartCol); err != nil {
			return err
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("no tables to write to %s", path)
	}
	if !slices.Contains(sheetNames(sheets), defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save workbook %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, df dataframe.DataFrame, headerStyle int) error {
	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("unable to write header of %s: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(names), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _, _ := excelize.SplitCellName(last)
	if err := f.SetColWidth(sheet, "A", lastCol, defaultColWidth); err != nil {
		return err
	}

	for r := 0; r < df.Nrow(); r++ {
		row := make([]interface{}, len(names))
		for c := range names {
			row[c] = cellValue(df.Elem(r, c))
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("unable to write row %d of %s: %w", r+1, sheet, err)
		}
	}
	return nil
}

// cellValue keeps numbers numeric in the sheet. Missing elements are blank.
func cellValue(e series.Element) interface{} {
	if e.IsNA() {
		return nil
	}
	switch e.Type() {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return nil
		}
		return v
	case series.Float:
		v := e.Float()
		if math.IsInf(v, 0) {
			return nil
		}
		return v
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return nil
		}
		return v
	}
	return e.String()
}

func addChart(f *excelize.File, sheet string, df dataframe.DataFrame, valueCol string) error {
	names := df.Names()
	yearAt := slices.Index(names, yearColumn)
	valueAt := slices.Index(names, valueCol)
	if yearAt == -1 || valueAt == -1 || df.Nrow() == 0 {
		return nil
	}
	lastRow := df.Nrow() + 1
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!%s", sheet, absCell(valueAt+1, 1)),
			Categories: fmt.Sprintf("'%s'!%s:%s", sheet, absCell(yearAt+1, 2), absCell(yearAt+1, lastRow)),
			Values:     fmt.Sprintf("'%s'!%s:%s", sheet, absCell(valueAt+1, 2), absCell(valueAt+1, lastRow)),
		}},
		Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("%s per %s", valueCol, yearColumn)}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
	anchor, _ := excelize.CoordinatesToCellName(len(names)+chartOffsetCols, 2)
	if err := f.AddChart(sheet, anchor, chart); err != nil {
		return fmt.Errorf("unable to add chart to %s: %w", sheet, err)
	}
	return nil
}

func absCell(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row, true)
	return cell
}

func sheetNames(sheets []Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}
