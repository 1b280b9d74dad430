// Package orchestration coordinates the materialization of a transform graph
// with the progress display and the optional verification pass. It sits
// between the application shell and the engine.
package orchestration

import (
	"context"
	"io"
	"math/cmplx"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/moble/daft/internal/cache"
	"github.com/moble/daft/internal/cli"
	"github.com/moble/daft/internal/engine"
	apperrors "github.com/moble/daft/internal/errors"
	"github.com/moble/daft/internal/fourier"
	"github.com/moble/daft/pkg/models"
)

// ProgressBufferSize defines the buffer size for the progress channel.
// A larger buffer reduces the likelihood of blocking the materialization
// goroutines when the UI is slow to consume updates.
const ProgressBufferSize = 64

// VerifyLengthLimit is the largest axis length for which the quadratic
// direct-DFT verification is attempted.
const VerifyLengthLimit = 1 << 12

// LogProgressThreshold is the minimum progress delta between structured
// progress log entries.
const LogProgressThreshold = 0.10

// Params gathers everything a transform run needs.
type Params struct {
	// Graph is the lazy task graph to materialize.
	Graph *engine.Graph
	// Cache holds intermediate chunk results across the run.
	Cache *cache.Bounded
	// Sink, when non-nil, receives the output chunk by chunk.
	Sink engine.Sink
	// Input is the original series in flattened row-major order, kept only
	// for the optional verification pass.
	Input []complex128
	// Workers bounds the goroutines materializing sibling subtrees.
	Workers int
	// Verify enables the direct-DFT cross-check on small series.
	Verify bool
	// Quiet suppresses the interactive progress display.
	Quiet bool
	// JSONOutput also suppresses the progress display, keeping stdout as a
	// single JSON document.
	JSONOutput bool
}

// ExecuteTransform materializes a transform graph and assembles the run
// result. It wires the engine's progress observers to the interactive
// display, runs the materialization under the supplied context, and
// optionally cross-checks the output against a direct DFT.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - p: The run parameters (graph, cache, sink, options).
//   - out: The io.Writer for displaying progress updates.
//   - logger: The structured logger for progress and outcome events.
//
// Returns:
//   - models.TransformResult: The assembled result; Values is nil when a
//     sink was used.
//   - error: An error if materialization or verification failed.
func ExecuteTransform(ctx context.Context, p Params, out io.Writer, logger zerolog.Logger) (models.TransformResult, error) {
	progressChan := make(chan engine.ProgressUpdate, ProgressBufferSize)

	showProgress := !p.Quiet && !p.JSONOutput
	var displayWg sync.WaitGroup
	if showProgress {
		displayWg.Add(1)
		go cli.DisplayProgress(&displayWg, progressChan, out)
	}

	observers := []engine.ProgressObserver{
		engine.NewChannelObserver(progressChan),
		engine.NewLoggingObserver(logger, LogProgressThreshold),
	}

	stats := &engine.MaterializeStats{}
	opts := engine.MaterializeOptions{
		Sink:      p.Sink,
		Workers:   p.Workers,
		Observers: observers,
		Stats:     stats,
	}

	var values []complex128
	g, gctx := errgroup.WithContext(ctx)
	startTime := time.Now()
	g.Go(func() error {
		var err error
		values, err = p.Graph.Materialize(gctx, p.Cache, opts)
		return err
	})
	err := g.Wait()
	duration := time.Since(startTime)

	close(progressChan)
	if showProgress {
		displayWg.Wait()
	}

	outer, inner := p.Graph.Batch()
	result := models.TransformResult{
		Values:         values,
		Shape:          p.Graph.Shape(),
		Axis:           p.Graph.Axis(),
		Length:         p.Graph.Length(),
		ChunkSize:      p.Graph.ChunkSize(),
		NodeCount:      p.Graph.NodeCount(),
		BaseCases:      stats.BaseCases,
		Recombinations: stats.Recombinations,
		CacheHits:      stats.CacheHits,
		ChunksWritten:  stats.ChunksWritten,
		Duration:       duration,
	}
	if err != nil {
		return result, err
	}

	logger.Info().
		Int("length", result.Length).
		Int("nodes", result.NodeCount).
		Int64("base_cases", result.BaseCases).
		Int64("cache_hits", result.CacheHits).
		Dur("duration", duration).
		Msg("transform complete")

	if p.Verify {
		if verr := verifyResult(ctx, p, values, outer, inner); verr != nil {
			return result, verr
		}
		result.Verified = true
		logger.Info().Msg("direct DFT verification passed")
	}
	return result, nil
}

// verifyTolerance bounds the per-bin absolute error, scaled by the series
// magnitude, accepted by the verification pass.
const verifyTolerance = 1e-9

// verifyResult recomputes the transform with the quadratic direct DFT and
// compares it bin by bin against the materialized output. Only in-memory
// runs over small series are eligible.
func verifyResult(ctx context.Context, p Params, values []complex128, outer, inner int) error {
	if values == nil {
		return apperrors.NewConfigError("verification requires an in-memory result; drop -output or -verify")
	}
	n := p.Graph.Length()
	if n > VerifyLengthLimit {
		return apperrors.NewConfigError("verification limited to axis lengths up to %d, got %d", VerifyLengthLimit, n)
	}

	lane := make([]complex128, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for k := 0; k < n; k++ {
				lane[k] = p.Input[(o*n+k)*inner+i]
			}
			ref := directReference(lane, p.Graph.Inverse())

			scale := 0.0
			for k := 0; k < n; k++ {
				if a := cmplx.Abs(ref[k]); a > scale {
					scale = a
				}
			}
			tol := verifyTolerance * float64(n) * (scale + 1)
			for k := 0; k < n; k++ {
				got := values[(o*n+k)*inner+i]
				if cmplx.Abs(got-ref[k]) > tol {
					return apperrors.VerificationError{Bin: k, Outer: o, Inner: i, Got: got, Want: ref[k]}
				}
			}
		}
	}
	return nil
}

// directReference computes the reference spectrum for one lane. The inverse
// reference is derived from the forward DFT by conjugation and 1/N scaling.
func directReference(x []complex128, inverse bool) []complex128 {
	if !inverse {
		return fourier.DirectDFT(x)
	}
	n := len(x)
	conj := make([]complex128, n)
	for i, v := range x {
		conj[i] = cmplx.Conj(v)
	}
	ref := fourier.DirectDFT(conj)
	for k := range ref {
		ref[k] = cmplx.Conj(ref[k]) / complex(float64(n), 0)
	}
	return ref
}
