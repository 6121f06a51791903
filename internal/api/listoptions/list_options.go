package listoptions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0
	MaxLimit      = 1000

	OrderAsc           = "asc"
	OrderDesc          = "desc"
	ResponseFormatJSON = "json"
	ResponseFormatCSV  = "csv"
)

type ListOptions struct {
	Limit    int
	Offset   int
	OrderBy  string
	OrderHow string
	Format   string
}

// OrderByMap maps allowed JSON keys to table columns.
type OrderByMap map[string]string

var TopPartnersAllowedOrderBy = OrderByMap{
	"year":     "Year",
	"quantity": "Qty_in_kg",
}

var ProductionAllowedOrderBy = OrderByMap{
	"year":       "Year",
	"imports":    "Imports",
	"exports":    "Exports",
	"production": "Production",
}

var TotalsAllowedOrderBy = OrderByMap{
	"period":    "Period",
	"flow_code": "FlowCode",
	"cmd_code":  "CmdCode",
	"quantity":  "Qty_in_kg",
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	return def
}

// ListAPIOptions reads limit, offset, order_by, order_how and the response
// format. Without order_by the table keeps its own order.
func ListAPIOptions(c echo.Context, allowedOrderBy OrderByMap) (ListOptions, error) {
	limit := parseInt(c.QueryParam("limit"), DefaultLimit)
	offset := parseInt(c.QueryParam("offset"), DefaultOffset)
	orderBy := strings.TrimSpace(c.QueryParam("order_by"))
	orderHow := strings.ToLower(c.QueryParam("order_how"))

	acceptHeader := c.Request().Header.Get("Accept")
	formatParam := strings.ToLower(c.QueryParam("format"))

	format, err := resolveResponseFormat(acceptHeader, formatParam)
	if err != nil {
		return ListOptions{}, err
	}

	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = DefaultOffset
	}

	if orderHow == "" {
		orderHow = OrderAsc
	}
	if orderHow != OrderAsc && orderHow != OrderDesc {
		return ListOptions{}, fmt.Errorf("invalid order_how value: %s", orderHow)
	}

	if orderBy != "" {
		column, ok := allowedOrderBy[orderBy]
		if !ok {
			return ListOptions{}, fmt.Errorf("invalid order_by value: %s", orderBy)
		}
		orderBy = column
	}

	return ListOptions{
		Limit:    limit,
		Offset:   offset,
		OrderBy:  orderBy,
		OrderHow: orderHow,
		Format:   format,
	}, nil
}

func resolveResponseFormat(acceptHeaderVal string, formatQueryParamVal string) (string, error) {
	if acceptHeaderVal == "" && formatQueryParamVal == "" {
		return ResponseFormatJSON, nil
	}

	switch acceptHeaderVal {
	case "text/csv":
		return ResponseFormatCSV, nil
	case "application/json":
		return ResponseFormatJSON, nil
	}

	switch formatQueryParamVal {
	case "", "json":
		return ResponseFormatJSON, nil
	case "csv":
		return ResponseFormatCSV, nil
	default:
		return "", fmt.Errorf("invalid value for format: %q", formatQueryParamVal)
	}
}
