package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_loaded_rows_total",
		Help: "The total number of rows written to the database",
	})
	loadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_load_error_total",
		Help: "The total number of failed table loads",
	})
)
