package api

import (
	"net/http"

	"github.com/go-gota/gota/dataframe"
	"github.com/labstack/echo/v4"

	"github.com/coffeestats/coffee-trade-etl/internal/api/listoptions"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

// Handlers serve the tables of one finished pipeline run.
type Handlers struct {
	Result *pipeline.Result
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": msg})
}

func (h *Handlers) respond(c echo.Context, df dataframe.DataFrame, allowedOrderBy listoptions.OrderByMap, filename string) error {
	opts, err := listoptions.ListAPIOptions(c, allowedOrderBy)
	if err != nil {
		return badRequest(c, err.Error())
	}
	page, count, err := pageTable(df, opts)
	if err != nil {
		log.Error("unable to page table: ", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "unable to read table"})
	}
	if opts.Format == listoptions.ResponseFormatCSV {
		return writeTableCSV(c.Response(), page, filename)
	}
	results := CollectionResponse(tableRecords(page), c.Request(), count, opts.Limit, opts.Offset)
	return c.JSON(http.StatusOK, results)
}

// GetTopPartners ranks partners of one flow per year. The ranking is
// recomputed from the cleaned table so any n in range can be served.
func (h *Handlers) GetTopPartners(c echo.Context) error {
	cols := h.Result.Mode.Columns()
	q := TopPartnersQuery{N: cols.TopN}
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(q); err != nil {
		return badRequest(c, err.Error())
	}

	if h.Result.Empty {
		return h.respond(c, dataframe.DataFrame{}, listoptions.TopPartnersAllowedOrderBy, "top_partners.csv")
	}
	top, err := pipeline.NewAggregator(h.Result.Mode).TopNByFlow(h.Result.Cleaned, q.Flow, q.N, cols.PartnerKeys...)
	if err != nil {
		log.Error("unable to rank partners: ", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "unable to rank partners"})
	}
	top, err = filterYear(top, cols.Year, q.Year)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.respond(c, top, listoptions.TopPartnersAllowedOrderBy, "top_partners.csv")
}

func (h *Handlers) GetProduction(c echo.Context) error {
	var q YearQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(q); err != nil {
		return badRequest(c, err.Error())
	}
	prod, err := filterYear(h.Result.Production, pipeline.ColYear, q.Year)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.respond(c, prod, listoptions.ProductionAllowedOrderBy, "estimated_production.csv")
}

func (h *Handlers) GetTotals(c echo.Context) error {
	var q YearQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := c.Validate(q); err != nil {
		return badRequest(c, err.Error())
	}
	totals, err := filterPeriodYear(h.Result.Totals, pipeline.ColPeriod, q.Year)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.respond(c, totals, listoptions.TotalsAllowedOrderBy, "grouped_totals.csv")
}

// GetRun describes the run being served.
func (h *Handlers) GetRun(c echo.Context) error {
	res := h.Result
	return c.JSON(http.StatusOK, echo.Map{
		"run_id":       res.RunID,
		"mode":         res.Mode,
		"files":        res.Files,
		"missed_years": res.MissedYears,
		"empty":        res.Empty,
		"raw_rows":     res.RawRows,
		"clean_rows":   res.Cleaned.Nrow(),
		"stats":        res.Stats,
		"finished_at":  res.FinishedAt,
	})
}

func GetAppStatus(c echo.Context) error {
	status := map[string]string{
		"api-server": "working",
	}
	return c.JSON(http.StatusOK, status)
}
