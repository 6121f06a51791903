package pipeline

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/coffeestats/coffee-trade-etl/internal/countries"
)

const (
	ColPartnerISO   = "PartnerISO"
	ColPartnerDesc  = colPartnerDesc
	ColQuantity     = "Qty_in_kg"
	ColYear         = "Year"
	ColMonth        = "Month"
	ColCmdCode      = "CmdCode"
	ColCmdDesc      = "CmdDesc"
	ColFlowCode     = "FlowCode"
	ColFlowDesc     = "FlowDesc"
	ColPrimaryValue = "PrimaryValue"
)

// Column decisions below come from profiling the 2018-2024 coffee extracts.
var (
	// Same value on every row.
	constantColumns = []string{
		"TypeCode", "FreqCode", "ReporterCode", "Partner2Code", "Partner2ISO", "Partner2Desc",
		"ClassificationCode", "ClassificationSearchCode", "IsOriginalClassification", "AggrLevel",
		"IsLeaf", "CustomsCode", "CustomsDesc", "MosCode", "MotCode", "MotDesc", "QtyUnitCode",
		"QtyUnitAbbr", "IsQtyEstimated", "AltQtyUnitCode", "AltQtyUnitAbbr", "IsAltQtyEstimated",
		"IsNetWgtEstimated", "GrossWgt", "IsGrossWgtEstimated", "LegacyEstimationFlag",
		"IsReported", "IsAggregate",
	}
	// Highly correlated with a retained column.
	correlatedColumns = []string{"Fobvalue", "RefPeriodId", "PartnerCode", "AltQty", "NetWgt"}
	// Mostly missing.
	sparseColumns = []string{"Cifvalue", "Unnamed: 47"}
)

// CleaningRules is the static configuration of a Cleaner. FloatColumns keep
// their missing values; aggregation counts them as 0.
type CleaningRules struct {
	Renames      []Rename
	Drop         []string
	IntColumns   []string
	FloatColumns []string
}

// DefaultCleaningRules returns the rules used for UN Comtrade coffee extracts.
func DefaultCleaningRules() CleaningRules {
	drop := append([]string{}, constantColumns...)
	drop = append(drop, correlatedColumns...)
	drop = append(drop, sparseColumns...)
	return CleaningRules{
		Renames: []Rename{
			{From: "Qty", To: ColQuantity},
			{From: "RefYear", To: ColYear},
			{From: "RefMonth", To: ColMonth},
		},
		Drop:         drop,
		IntColumns:   []string{ColYear, ColMonth, ColCmdCode},
		FloatColumns: []string{ColQuantity, ColPrimaryValue},
	}
}

// Cleaner normalises a consolidated table. The country lookup is shared by
// the name correction and the partner filter.
type Cleaner struct {
	Rules     CleaningRules
	Reference *countries.Reference
}

func NewCleaner(ref *countries.Reference) *Cleaner {
	return &Cleaner{Rules: DefaultCleaningRules(), Reference: ref}
}

// CleanStats reports what one Clean call changed.
type CleanStats struct {
	Renamed   int
	Dropped   int
	Corrected int
	Removed   int
}

// Clean renames, drops, corrects partner names, filters invalid partners and
// types the key and measure columns. Steps whose columns are absent are
// skipped, so Clean(Clean(df)) equals Clean(df).
func (c *Cleaner) Clean(df dataframe.DataFrame) (dataframe.DataFrame, CleanStats, error) {
	var stats CleanStats
	if df.Err != nil {
		return df, stats, df.Err
	}
	if IsEmpty(df) {
		return df, stats, nil
	}

	df, stats.Renamed = applyRenames(df, c.Rules.Renames)
	if stats.Renamed == 0 {
		log.Info("specified columns to rename are either already renamed or do not exist")
	}

	toDrop, _ := splitColumns(df, c.Rules.Drop)
	if len(toDrop) > 0 {
		df = df.Drop(toDrop)
		if df.Err != nil {
			return df, stats, fmt.Errorf("unable to drop columns: %w", df.Err)
		}
		stats.Dropped = len(toDrop)
	} else {
		log.Info("specified columns to drop are either already removed or do not exist")
	}

	if hasColumn(df, ColPartnerISO) {
		var err error
		df, stats.Corrected, stats.Removed, err = c.validatePartners(df)
		if err != nil {
			return df, stats, err
		}
		if stats.Removed > 0 {
			droppedRows.Add(float64(stats.Removed))
			log.Infof("removed %d rows with an invalid partner code", stats.Removed)
		}
	} else {
		log.Infof("column %s not found, skipping partner validation", ColPartnerISO)
	}

	df = c.typeColumns(df)
	if df.Err != nil {
		return df, stats, fmt.Errorf("unable to type columns: %w", df.Err)
	}
	return df, stats, nil
}

// validatePartners maps every partner code to its canonical name in one pass,
// overwrites PartnerDesc where the code is valid and keeps only those rows.
func (c *Cleaner) validatePartners(df dataframe.DataFrame) (dataframe.DataFrame, int, int, error) {
	codes := df.Col(ColPartnerISO)
	valid := make([]bool, codes.Len())
	nValid := 0
	for i := 0; i < codes.Len(); i++ {
		e := codes.Elem(i)
		if !e.IsNA() && c.Reference.Valid(e.String()) {
			valid[i] = true
			nValid++
		}
	}

	corrected := 0
	if hasColumn(df, ColPartnerDesc) {
		current := df.Col(ColPartnerDesc)
		names := make([]string, codes.Len())
		for i := range names {
			e := current.Elem(i)
			if e.IsNA() {
				names[i] = "NaN"
			} else {
				names[i] = e.String()
			}
			if !valid[i] {
				continue
			}
			canonical, _ := c.Reference.Lookup(codes.Elem(i).String())
			if canonical != names[i] {
				names[i] = canonical
				corrected++
			}
		}
		if corrected > 0 {
			df = df.Mutate(series.New(names, series.String, ColPartnerDesc))
			if df.Err != nil {
				return df, 0, 0, fmt.Errorf("unable to correct partner names: %w", df.Err)
			}
		}
	}

	removed := codes.Len() - nValid
	if removed > 0 {
		df = df.Subset(valid)
	}
	return df, corrected, removed, df.Err
}

func (c *Cleaner) typeColumns(df dataframe.DataFrame) dataframe.DataFrame {
	for t, names := range map[series.Type][]string{series.Int: c.Rules.IntColumns, series.Float: c.Rules.FloatColumns} {
		present, _ := splitColumns(df, names)
		for _, name := range present {
			if df.Col(name).Type() != t {
				df = df.Mutate(series.New(df.Col(name), t, name))
			}
		}
	}
	return df
}
