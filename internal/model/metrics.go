package model

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dbError = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_db_error_total",
		Help: "The total number of DB error",
	})
	loadRunsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_load_runs_recorded_total",
		Help: "The total number of table loads recorded in load_runs",
	})
)
