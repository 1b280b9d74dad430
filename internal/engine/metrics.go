package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for engine-level observability. Cache metrics live in
// the cache package; these cover the numeric work itself.
var (
	baseCasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_base_cases_total",
		Help: "Total number of in-memory base-case transforms executed",
	})
	recombinationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_recombinations_total",
		Help: "Total number of butterfly recombination steps executed",
	})
	sinkChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_sink_chunks_written_total",
		Help: "Total number of output chunks streamed to a sink",
	})
	sinkBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_sink_bytes_written_total",
		Help: "Total bytes streamed to output sinks",
	})
)
