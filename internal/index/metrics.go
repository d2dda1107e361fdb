// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var indexRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "citation_engine_index_requests_total",
		Help: "Bibliographic index requests by operation and result",
	},
	[]string{"op", "result"},
)

func observe(op, result string) {
	indexRequests.WithLabelValues(op, result).Inc()
}
