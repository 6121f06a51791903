package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/coffeestats/coffee-trade-etl/internal/config"
	"github.com/coffeestats/coffee-trade-etl/internal/logging"
	"github.com/coffeestats/coffee-trade-etl/internal/pipeline"
)

var log *logrus.Logger = logging.GetLogger()

type queryValidator struct {
	validator *validator.Validate
}

func (v *queryValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// NewRouter serves the tables of res. Request metrics go to reg, or to the
// default registry when reg is nil.
func NewRouter(res *pipeline.Result, reg *prometheus.Registry) *echo.Echo {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	app := echo.New()
	app.HideBanner = true
	app.Validator = &queryValidator{validator: validator.New()}
	app.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "coffeetrade",
		Registerer: registerer,
		LabelFuncs: map[string]echoprometheus.LabelValueFunc{
			"url": func(c echo.Context, err error) string {
				return c.Path()
			},
		},
	}))
	app.Use(middleware.Logger())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods: []string{http.MethodGet},
	}))

	h := &Handlers{Result: res}
	app.GET("/status", GetAppStatus)
	app.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	v1 := app.Group("/api/v1")
	v1.GET("/run", h.GetRun)
	v1.GET("/top-partners", h.GetTopPartners)
	v1.GET("/production", h.GetProduction)
	v1.GET("/totals", h.GetTotals)
	return app
}

func StartAPIServer(res *pipeline.Result) {
	cfg := config.GetConfig()
	s := http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.API_PORT),
		Handler:           NewRouter(res, nil),
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeout) * time.Second,
	}
	log.Infof("serving run %s on port %s", res.RunID, cfg.API_PORT)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
