package pipeline

import "fmt"

// Mode selects the output schema of a pipeline run.
type Mode string

const (
	// ModeRaw keeps the Comtrade column names.
	ModeRaw Mode = "raw"
	// ModeReport renames columns for reporting and adds Product_Type.
	ModeReport Mode = "report"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaw, ModeReport:
		return Mode(s), nil
	case "":
		return ModeRaw, nil
	}
	return "", fmt.Errorf("unknown pipeline mode %q, expected %q or %q", s, ModeRaw, ModeReport)
}

// Columns names the columns aggregation reads in one mode. PartnerKeys group
// the top partner tables.
type Columns struct {
	Year        string
	Flow        string
	Quantity    string
	Value       string
	PartnerKeys []string
	TotalsKeys  []string
	TopN        int
}

func (m Mode) Columns() Columns {
	if m == ModeReport {
		return Columns{
			Year:        ColYear,
			Flow:        ColTradeType,
			Quantity:    ColQuantity,
			Value:       ColTradeAmount,
			PartnerKeys: []string{ColPartnerName, ColProductType},
			TotalsKeys:  []string{ColPeriod, ColFlowCode, ColCmdCode},
			TopN:        5,
		}
	}
	return Columns{
		Year:        ColYear,
		Flow:        ColFlowDesc,
		Quantity:    ColQuantity,
		Value:       ColPrimaryValue,
		PartnerKeys: []string{ColPartnerISO, ColCmdCode},
		TotalsKeys:  []string{ColPeriod, ColFlowCode, ColCmdCode},
		TopN:        10,
	}
}
