package medium

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	partitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wavesim",
		Subsystem: "medium",
		Name:      "partitions_total",
		Help:      "Total number of partitions committed by decomposition.",
	})

	classificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wavesim",
		Subsystem: "medium",
		Name:      "cell_classifications_total",
		Help:      "Total number of grid cells whose material was sampled from the mesh.",
	})

	partitionCells = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wavesim",
		Subsystem: "medium",
		Name:      "partition_cells",
		Help:      "Number of grid cells per committed partition.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})
)
