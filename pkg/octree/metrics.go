package octree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wavesim",
		Subsystem: "octree",
		Name:      "nodes",
		Help:      "Number of nodes in the most recently built octree.",
	})

	subdivisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wavesim",
		Subsystem: "octree",
		Name:      "subdivisions_total",
		Help:      "Total number of octree node subdivisions.",
	})
)
