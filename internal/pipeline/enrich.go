package pipeline

import (
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	ColOriginISO   = "Origin_CountryISO"
	ColOriginName  = "Origin_CountryName"
	ColPartnerName = "Partner_CountryName"
	ColTradeType   = "Trade_Type"
	ColTradeAmount = "Trade_Amount"
	ColProductType = "Product_Type"

	// GreenCoffeeCode is HS 090111, coffee not roasted and not decaffeinated.
	GreenCoffeeCode = 90111
	// UnknownProduct marks commodity codes outside the product table.
	UnknownProduct = "Unknown"
)

// DefaultProductTypes maps HS 0901 subheadings to report categories.
func DefaultProductTypes() map[int]string {
	return map[int]string{
		90111: "Coffee, Green",
		90112: "Coffee, Green Decaf",
		90121: "Coffee, Roasted",
		90122: "Coffee, Roasted Decaf",
	}
}

func reportRenames() []Rename {
	return []Rename{
		{From: "ReporterISO", To: ColOriginISO},
		{From: "ReporterDesc", To: ColOriginName},
		{From: ColPartnerDesc, To: ColPartnerName},
		{From: ColFlowDesc, To: ColTradeType},
		{From: ColPrimaryValue, To: ColTradeAmount},
	}
}

// Enricher turns a cleaned table into the report schema.
type Enricher struct {
	Renames  []Rename
	Products map[int]string
}

func NewEnricher() *Enricher {
	return &Enricher{Renames: reportRenames(), Products: DefaultProductTypes()}
}

// ProductType returns the category of a commodity code, or UnknownProduct.
func (e *Enricher) ProductType(code int) string {
	if name, ok := e.Products[code]; ok {
		return name
	}
	return UnknownProduct
}

// Enrich applies the report renames and adds Product_Type right after
// CmdDesc (last when CmdDesc is absent). It is idempotent.
func (e *Enricher) Enrich(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}
	if IsEmpty(df) {
		return df, nil
	}

	df, applied := applyRenames(df, e.Renames)
	if applied == 0 {
		log.Info("report columns are either already renamed or do not exist")
	}

	if !hasColumn(df, ColCmdCode) {
		log.Infof("column %s not found, skipping product mapping", ColCmdCode)
		return df, nil
	}

	codes := df.Col(ColCmdCode)
	products := make([]string, codes.Len())
	for i := range products {
		code, err := codes.Elem(i).Int()
		if err != nil {
			products[i] = UnknownProduct
			continue
		}
		products[i] = e.ProductType(code)
	}
	df = df.Mutate(series.New(products, series.String, ColProductType))
	if df.Err != nil {
		return df, fmt.Errorf("unable to add %s: %w", ColProductType, df.Err)
	}

	df = df.Select(productTypeOrder(df.Names()))
	return df, df.Err
}

func productTypeOrder(names []string) []string {
	order := slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == ColProductType })
	at := slices.Index(order, ColCmdDesc)
	if at == -1 {
		return append(order, ColProductType)
	}
	return slices.Insert(order, at+1, ColProductType)
}
