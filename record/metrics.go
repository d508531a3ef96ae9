package record

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ormkit_query_total",
			Help: "Queries run for record types.",
		},
		[]string{
			"table",
			"result", // ok, error
		},
	)
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ormkit_query_duration_seconds",
			Help:    "Query duration including row transfer.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"table"},
	)
	saveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ormkit_save_total",
			Help: "Record writes.",
		},
		[]string{
			"table",
			"op",     // insert, update, delete
			"result", // ok, error
		},
	)
	tableCreateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ormkit_table_create_total",
			Help: "Tables created from record types.",
		},
		[]string{"table"},
	)
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
