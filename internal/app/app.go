// Package app wires the transform pipeline together: configuration, dataset
// loading, decomposition, materialization, and result presentation. It is
// the only package that knows about every other layer.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moble/daft/internal/cache"
	"github.com/moble/daft/internal/calibration"
	"github.com/moble/daft/internal/chunked"
	"github.com/moble/daft/internal/cli"
	"github.com/moble/daft/internal/config"
	"github.com/moble/daft/internal/dataset"
	"github.com/moble/daft/internal/engine"
	apperrors "github.com/moble/daft/internal/errors"
	"github.com/moble/daft/internal/logging"
	"github.com/moble/daft/internal/orchestration"
	"github.com/moble/daft/internal/server"
	"github.com/moble/daft/internal/ui"
)

// metricsShutdownTimeout bounds the graceful shutdown of the metrics server
// after the transform finishes.
const metricsShutdownTimeout = 2 * time.Second

// Application represents the daft application instance. It encapsulates the
// configuration and provides the Run method that executes a full transform.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or
// validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "daft"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		ErrWriter: errWriter,
	}, nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// Run executes a full transform: it loads the input dataset, builds and
// materializes the task graph, and presents the result.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	// Initialize CLI theme (respects -no-color flag and NO_COLOR env var)
	ui.InitTheme(a.Config.NoColor)

	logger := a.newLogger()

	if a.Config.MetricsAddr != "" {
		srv := server.NewMetricsServer(a.Config.MetricsAddr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("metrics server shutdown failed")
			}
		}()
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	return a.runTransform(ctx, out, logger)
}

// newLogger builds the run logger. Quiet mode raises the floor to warnings
// so scripted output stays clean.
func (a *Application) newLogger() zerolog.Logger {
	level := a.Config.LogLevel
	if a.Config.Quiet && level == config.DefaultLogLevel {
		level = "warn"
	}
	return logging.New(a.ErrWriter, level, !a.Config.JSONOutput)
}

// runTransform loads the dataset, decomposes it, and materializes the graph.
func (a *Application) runTransform(ctx context.Context, out io.Writer, logger zerolog.Logger) int {
	data, header, err := dataset.Load(a.Config.InputPath)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error loading dataset: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	logger.Info().Str("path", a.Config.InputPath).Stringer("header", header).Msg("dataset loaded")

	chunkSize, memoryBudget, workers := a.resolveResources(logger)

	series, err := chunked.FromBuffer(data, header.Shape, a.Config.Axis, chunkSize)
	if err != nil {
		return apperrors.HandleTransformError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	eng := &engine.Engine{ChunkSize: chunkSize, Inverse: a.Config.Inverse, Logger: logger}
	graph, err := eng.Decompose(series)
	if err != nil {
		return apperrors.HandleTransformError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}

	var sink *dataset.FileSink
	var sinkIface engine.Sink
	if a.Config.OutputSpec != "" {
		path, name, perr := dataset.ParseOutputSpec(a.Config.OutputSpec)
		if perr != nil {
			fmt.Fprintf(a.ErrWriter, "Error in output spec: %v\n", perr)
			return apperrors.ExitErrorConfig
		}
		sink = dataset.NewFileSink(path, name, graph.Axis())
		sinkIface = sink
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		a.printExecutionConfig(out, graph, chunkSize, memoryBudget, workers)
	}

	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
	}

	c := cache.NewBounded(memoryBudget, logger)
	params := orchestration.Params{
		Graph:      graph,
		Cache:      c,
		Sink:       sinkIface,
		Input:      data,
		Workers:    workers,
		Verify:     a.Config.Verify,
		Quiet:      a.Config.Quiet,
		JSONOutput: a.Config.JSONOutput,
	}
	result, err := orchestration.ExecuteTransform(ctx, params, progressOut, logger)
	if err != nil {
		if sink != nil {
			_ = sink.Close()
		}
		return apperrors.HandleTransformError(err, result.Duration, a.ErrWriter, cli.CLIColorProvider{})
	}
	if sink != nil {
		if cerr := sink.Close(); cerr != nil {
			fmt.Fprintf(a.ErrWriter, "Error finalizing output: %v\n", cerr)
			return apperrors.ExitErrorGeneric
		}
	}

	outputCfg := cli.OutputConfig{
		Input:      a.Config.InputPath,
		Output:     a.Config.OutputSpec,
		Inverse:    a.Config.Inverse,
		JSONOutput: a.Config.JSONOutput,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}
	if derr := cli.DisplaySummary(out, result, outputCfg); derr != nil {
		fmt.Fprintf(a.ErrWriter, "Error writing summary: %v\n", derr)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// resolveResources fills in calibrated values for parameters left at zero.
func (a *Application) resolveResources(logger zerolog.Logger) (chunkSize int, memoryBudget int64, workers int) {
	memoryBudget = a.Config.MemoryBudget
	if memoryBudget == 0 {
		memoryBudget = calibration.EstimateMemoryBudget()
		logger.Debug().Int64("memory_budget", memoryBudget).Msg("calibrated memory budget")
	}
	chunkSize = a.Config.ChunkSize
	if chunkSize == 0 {
		chunkSize = calibration.EstimateChunkSize(memoryBudget)
		logger.Debug().Int("chunk_size", chunkSize).Msg("calibrated chunk size")
	}
	workers = a.Config.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return chunkSize, memoryBudget, workers
}

// printExecutionConfig prints a banner describing the run parameters.
func (a *Application) printExecutionConfig(out io.Writer, graph *engine.Graph, chunkSize int, memoryBudget int64, workers int) {
	direction := "forward"
	if a.Config.Inverse {
		direction = "inverse"
	}
	fmt.Fprintf(out, "%sTransform%s: %s%s%s FFT of %s%v%s along axis %s%d%s\n",
		cli.ColorBold(), cli.ColorReset(),
		cli.ColorMagenta(), direction, cli.ColorReset(),
		cli.ColorCyan(), graph.Shape(), cli.ColorReset(),
		cli.ColorCyan(), graph.Axis(), cli.ColorReset())
	fmt.Fprintf(out, "Chunk size: %s%d%s | Cache budget: %s%d%s bytes | Workers: %s%d%s | Graph nodes: %s%d%s\n",
		cli.ColorCyan(), chunkSize, cli.ColorReset(),
		cli.ColorCyan(), memoryBudget, cli.ColorReset(),
		cli.ColorCyan(), workers, cli.ColorReset(),
		cli.ColorCyan(), graph.NodeCount(), cli.ColorReset())
}
