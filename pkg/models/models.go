// Package models defines the shared data structures exchanged between the
// engine, the orchestration layer, and the output formatting code.
package models

import "time"

// TransformResult carries the outcome of a single transform execution,
// including the output (when kept in memory), the timing, and the work
// counters gathered during materialization.
type TransformResult struct {
	// Values holds the transformed series when no output sink was used.
	// It is nil for streamed runs.
	Values []complex128
	// Shape is the logical shape of the output series.
	Shape []int
	// Axis is the resolved (non-negative) transform axis.
	Axis int
	// Length is the series extent along the transform axis.
	Length int
	// ChunkSize is the chunk extent used for decomposition.
	ChunkSize int
	// NodeCount is the number of task nodes in the lazy graph.
	NodeCount int
	// BaseCases is the number of in-memory FFT base cases executed.
	BaseCases int64
	// Recombinations is the number of butterfly recombination steps.
	Recombinations int64
	// CacheHits is the number of graph nodes served from the cache.
	CacheHits int64
	// ChunksWritten is the number of chunks streamed to the sink.
	ChunksWritten int64
	// Duration is the wall-clock time of the materialization.
	Duration time.Duration
	// Verified reports whether a direct DFT cross-check was run and passed.
	Verified bool
}

// TransformSummary is the JSON-serializable view of a run, emitted when the
// -json flag is set.
type TransformSummary struct {
	Input          string  `json:"input"`
	Output         string  `json:"output,omitempty"`
	Inverse        bool    `json:"inverse"`
	Shape          []int   `json:"shape"`
	Axis           int     `json:"axis"`
	Length         int     `json:"length"`
	ChunkSize      int     `json:"chunk_size"`
	NodeCount      int     `json:"node_count"`
	BaseCases      int64   `json:"base_cases"`
	Recombinations int64   `json:"recombinations"`
	CacheHits      int64   `json:"cache_hits"`
	ChunksWritten  int64   `json:"chunks_written,omitempty"`
	DurationMs     float64 `json:"duration_ms"`
	Verified       bool    `json:"verified,omitempty"`
}
