// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expand

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var expansionRecords = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "citation_engine_expansion_records_total",
		Help: "Records seen at each author-expansion stage",
	},
	[]string{"stage"},
)
