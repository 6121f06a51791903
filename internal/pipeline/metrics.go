package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	discoveryMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_discovery_misses_total",
		Help: "The total number of years for which no input file matched",
	})
	ingestedFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_ingested_files_total",
		Help: "The total number of trade CSV files ingested",
	})
	ingestedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_ingested_rows_total",
		Help: "The total number of raw trade records read from CSV files",
	})
	droppedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coffeetrade_invalid_partner_rows_total",
		Help: "The total number of rows dropped because the partner code is not a valid ISO alpha-3 code",
	})
)
