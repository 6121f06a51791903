package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coffeestats/coffee-trade-etl/internal/api"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

func table(types map[string]series.Type, records [][]string) dataframe.DataFrame {
	return dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.WithTypes(types))
}

func fixtureResult() *pipeline.Result {
	cleaned := table(map[string]series.Type{
		"Year":         series.Int,
		"FlowDesc":     series.String,
		"PartnerISO":   series.String,
		"CmdCode":      series.Int,
		"Qty_in_kg":    series.Float,
		"PrimaryValue": series.Float,
	}, [][]string{
		{"Year", "FlowDesc", "PartnerISO", "CmdCode", "Qty_in_kg", "PrimaryValue"},
		{"2020", "Import", "USA", "90111", "100", "10"},
		{"2020", "Import", "DEU", "90111", "80", "8"},
		{"2020", "Import", "JPN", "90121", "30", "3"},
		{"2020", "Export", "COL", "90111", "500", "50"},
		{"2021", "Import", "USA", "90111", "120", "12"},
		{"2021", "Import", "ITA", "90111", "60", "6"},
	})
	production := table(map[string]series.Type{
		"Year":       series.Int,
		"Imports":    series.Float,
		"Exports":    series.Float,
		"Production": series.Float,
	}, [][]string{
		{"Year", "Imports", "Exports", "Production"},
		{"2020", "180", "500", "320"},
		{"2021", "180", "0", "-180"},
	})
	totals := table(map[string]series.Type{
		"Period":       series.Int,
		"FlowCode":     series.String,
		"CmdCode":      series.Int,
		"Qty_in_kg":    series.Float,
		"PrimaryValue": series.Float,
	}, [][]string{
		{"Period", "FlowCode", "CmdCode", "Qty_in_kg", "PrimaryValue"},
		{"202001", "M", "90111", "180", "18"},
		{"202001", "M", "90121", "30", "3"},
		{"202001", "X", "90111", "500", "50"},
		{"202101", "M", "90111", "180", "18"},
	})
	return &pipeline.Result{
		RunID:      "8b1c3f2e-4c1e-4f5e-9a4e-2d7c6b1a0f93",
		Mode:       pipeline.ModeRaw,
		Files:      []string{"data/ImportsExports_Coffee_BRA_WORLD_2020.csv"},
		RawRows:    7,
		Cleaned:    cleaned,
		Production: production,
		Totals:     totals,
	}
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeCollection(rec *httptest.ResponseRecorder) api.Collection {
	var c api.Collection
	Expect(json.Unmarshal(rec.Body.Bytes(), &c)).To(Succeed())
	return c
}

func column(c api.Collection, name string) []interface{} {
	values := []interface{}{}
	for _, row := range c.Data {
		values = append(values, row.(map[string]interface{})[name])
	}
	return values
}

var _ = Describe("Trade aggregate API", func() {
	var e *echo.Echo

	BeforeEach(func() {
		e = api.NewRouter(fixtureResult(), prometheus.NewRegistry())
	})

	Describe("Service endpoints", func() {
		It("should report the api server as working", func() {
			rec := get(e, "/status")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"api-server":"working"`))
		})

		It("should expose request metrics", func() {
			Expect(get(e, "/status").Code).To(Equal(http.StatusOK))
			rec := get(e, "/metrics")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("coffeetrade_request"))
		})

		It("should describe the served run", func() {
			rec := get(e, "/api/v1/run")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var run map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &run)).To(Succeed())
			Expect(run["mode"]).To(Equal("raw"))
			Expect(run["clean_rows"]).To(BeNumerically("==", 6))
		})
	})

	Describe("Top partners", func() {
		It("should rank importers per year by quantity", func() {
			rec := get(e, "/api/v1/top-partners?flow=Import&n=2")
			Expect(rec.Code).To(Equal(http.StatusOK))
			c := decodeCollection(rec)
			Expect(c.Meta.Count).To(Equal(4))
			Expect(column(c, "PartnerISO")).To(Equal([]interface{}{"USA", "DEU", "USA", "ITA"}))
			Expect(column(c, "Qty_in_kg")).To(Equal([]interface{}{100.0, 80.0, 120.0, 60.0}))
		})

		It("should default n to the mode's top n", func() {
			c := decodeCollection(get(e, "/api/v1/top-partners?flow=Import"))
			Expect(c.Meta.Count).To(Equal(5))
		})

		It("should keep export rows out of the import ranking", func() {
			c := decodeCollection(get(e, "/api/v1/top-partners?flow=Export&n=5"))
			Expect(column(c, "PartnerISO")).To(Equal([]interface{}{"COL"}))
		})

		It("should filter one year", func() {
			c := decodeCollection(get(e, "/api/v1/top-partners?flow=Import&n=5&year=2021"))
			Expect(column(c, "PartnerISO")).To(Equal([]interface{}{"USA", "ITA"}))
		})

		It("should order and page the ranking", func() {
			rec := get(e, "/api/v1/top-partners?flow=Import&n=2&order_by=quantity&order_how=desc&limit=1&offset=1")
			Expect(rec.Code).To(Equal(http.StatusOK))
			c := decodeCollection(rec)
			Expect(c.Meta.Count).To(Equal(4))
			Expect(column(c, "Qty_in_kg")).To(Equal([]interface{}{100.0}))
			Expect(c.Links.Next).To(ContainSubstring("offset=2"))
		})

		It("should answer in csv when asked", func() {
			rec := get(e, "/api/v1/top-partners?flow=Import&n=1&format=csv")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("text/csv"))
			lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
			Expect(lines[0]).To(Equal("Year,PartnerISO,CmdCode,Qty_in_kg,PrimaryValue"))
			Expect(lines).To(HaveLen(3))
		})

		DescribeTable("should reject invalid query parameters",
			func(query string) {
				rec := get(e, "/api/v1/top-partners"+query)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(rec.Body.String()).To(ContainSubstring(`"status":"error"`))
			},
			Entry("missing flow", "?n=3"),
			Entry("unknown flow", "?flow=Transit"),
			Entry("n below range", "?flow=Import&n=0"),
			Entry("n above range", "?flow=Import&n=51"),
			Entry("n not a number", "?flow=Import&n=ten"),
			Entry("year out of range", "?flow=Import&year=1200"),
			Entry("unknown order_by", "?flow=Import&order_by=partner"),
			Entry("unknown format", "?flow=Import&format=xml"),
		)
	})

	Describe("Estimated production", func() {
		It("should list every year", func() {
			c := decodeCollection(get(e, "/api/v1/production"))
			Expect(column(c, "Year")).To(Equal([]interface{}{2020.0, 2021.0}))
			Expect(column(c, "Production")).To(Equal([]interface{}{320.0, -180.0}))
		})

		It("should order by production", func() {
			c := decodeCollection(get(e, "/api/v1/production?order_by=production"))
			Expect(column(c, "Year")).To(Equal([]interface{}{2021.0, 2020.0}))
		})

		It("should filter one year", func() {
			c := decodeCollection(get(e, "/api/v1/production?year=2021"))
			Expect(c.Meta.Count).To(Equal(1))
		})
	})

	Describe("Grouped totals", func() {
		It("should filter periods of one year", func() {
			c := decodeCollection(get(e, "/api/v1/totals?year=2020"))
			Expect(c.Meta.Count).To(Equal(3))
			Expect(column(c, "FlowCode")).To(Equal([]interface{}{"M", "M", "X"}))
		})

		It("should reject a year that is not a number", func() {
			Expect(get(e, "/api/v1/totals?year=last").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("A run without input files", func() {
		BeforeEach(func() {
			e = api.NewRouter(&pipeline.Result{Mode: pipeline.ModeRaw, Empty: true}, prometheus.NewRegistry())
		})

		DescribeTable("should answer with an empty collection",
			func(target string) {
				rec := get(e, target)
				Expect(rec.Code).To(Equal(http.StatusOK))
				c := decodeCollection(rec)
				Expect(c.Data).To(BeEmpty())
				Expect(c.Meta.Count).To(Equal(0))
			},
			Entry("top partners", "/api/v1/top-partners?flow=Export&n=3"),
			Entry("production", "/api/v1/production"),
			Entry("totals", "/api/v1/totals?year=2020"),
		)
	})
})

var _ = Describe("Pagination links", func() {
	It("should omit previous link on first page", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/totals?limit=10&offset=0", nil)
		collection := api.CollectionResponse([]interface{}{}, req, 100, 10, 0)
		Expect(collection.Links.Previous).To(BeEmpty())
		Expect(collection.Links.Next).To(ContainSubstring("offset=10"))
	})

	It("should omit next link on last page", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/totals?limit=10&offset=90", nil)
		collection := api.CollectionResponse([]interface{}{}, req, 100, 10, 90)
		Expect(collection.Links.Next).To(BeEmpty())
		Expect(collection.Links.Previous).To(ContainSubstring("offset=80"))
	})
})
