// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var outcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "citation_engine_validation_outcomes_total",
		Help: "Candidate validation outcomes",
	},
	[]string{"outcome"},
)
