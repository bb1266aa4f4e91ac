package attend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsPrefix = "attendance_"

var tagsObservedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: metricsPrefix + "tags_observed",
		Help: "Number of first-seen tags inserted into the pending set",
	},
	[]string{"reader"},
)

var rowsUpdatedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: metricsPrefix + "rows_updated",
		Help: "Number of sheet rows marked present",
	},
)

var flushCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: metricsPrefix + "flushes",
		Help: "Number of successful reconciliation passes",
	},
)

var flushErrorCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: metricsPrefix + "flush_errors",
		Help: "Number of failed reconciliation passes, by stage",
	},
	[]string{"stage"},
)
