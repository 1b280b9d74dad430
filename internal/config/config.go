// Package config provides the configuration management for the daft
// application. It defines the data structure for the configuration, handles
// the parsing of command-line arguments, and performs validation on the
// configuration values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	apperrors "github.com/moble/daft/internal/errors"
)

const (
	// EnvPrefix is the prefix for all environment variables used by daft.
	// Environment variables provide an alternative to CLI flags for
	// configuration, following the 12-Factor App methodology.
	EnvPrefix = "DAFT_"
)

// Default configuration values. These can be overridden via command-line
// flags or environment variables; a zero chunk size or memory budget is
// resolved by calibration at startup.
const (
	// DefaultAxis transforms along the last axis, numpy style.
	DefaultAxis = -1
	// DefaultTimeout is the default transform timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters, parsed
// from command-line flags. It encapsulates all settings that control the
// execution, from the input dataset to resource-tuning parameters.
type AppConfig struct {
	// InputPath is the dataset file holding the series to transform.
	InputPath string
	// OutputSpec is the optional output destination of the form
	// path[:dataset_name]; empty means the result stays in memory.
	OutputSpec string
	// Axis is the transform axis; negative values count from the end.
	Axis int
	// ChunkSize is the chunk extent along the axis, the unit of in-memory
	// base-case work. Zero means calibrated automatically.
	ChunkSize int
	// MemoryBudget is the soft cache budget in bytes for intermediate
	// results. Zero means calibrated from the machine's memory.
	MemoryBudget int64
	// Inverse selects the inverse transform (conjugate twiddles, 1/N scale).
	Inverse bool
	// Verify recomputes the result with a direct DFT and compares, for
	// series small enough to check.
	Verify bool
	// Workers bounds the goroutines materializing sibling subtrees.
	// Zero means one worker per CPU.
	Workers int
	// Timeout sets the maximum duration for the transform.
	Timeout time.Duration
	// JSONOutput, if true, emits the run summary in JSON format.
	JSONOutput bool
	// Quiet suppresses progress display and banners for scripting.
	Quiet bool
	// Verbose prints leading output samples in the summary.
	Verbose bool
	// NoColor disables color output; also respects the NO_COLOR env var.
	NoColor bool
	// LogLevel is the minimum zerolog level ("debug", "info", ...).
	LogLevel string
	// MetricsAddr, if non-empty, serves Prometheus metrics on this address
	// for the duration of the run (useful for long transforms).
	MetricsAddr string
}

// Validate checks the semantic consistency of the configuration parameters.
// It ensures that numerical values are within valid ranges and that required
// inputs are present.
//
// Returns:
//   - error: An error of type ConfigError if the configuration is invalid,
//     nil otherwise.
func (c AppConfig) Validate() error {
	if c.InputPath == "" {
		return apperrors.NewConfigError("an input dataset is required (-input)")
	}
	if c.ChunkSize < 0 {
		return apperrors.NewConfigError("chunk size cannot be negative: %d", c.ChunkSize)
	}
	if c.MemoryBudget < 0 {
		return apperrors.NewConfigError("memory budget cannot be negative: %d", c.MemoryBudget)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("worker count cannot be negative: %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, sets their default values,
// and handles the parsing process. After parsing, environment variable
// overrides are applied for flags that were not explicitly set, then the
// resulting configuration is validated.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: A slice of strings representing the command-line arguments
//     (typically os.Args[1:]).
//   - errorWriter: An io.Writer where parsing errors and usage information
//     will be printed.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing fails or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.InputPath, "input", "", "Input dataset file to transform.")
	fs.StringVar(&config.InputPath, "i", "", "Input dataset file (shorthand).")
	fs.StringVar(&config.OutputSpec, "output", "", "Output destination of the form path[:dataset_name] (default dataset name 'X').")
	fs.StringVar(&config.OutputSpec, "o", "", "Output destination (shorthand).")
	fs.IntVar(&config.Axis, "axis", DefaultAxis, "Transform axis; negative values count from the last axis.")
	fs.IntVar(&config.ChunkSize, "chunk-size", 0, "Chunk extent along the axis in samples (0 = calibrated).")
	fs.Int64Var(&config.MemoryBudget, "memory-budget", 0, "Soft cache budget in bytes for intermediate results (0 = calibrated).")
	fs.BoolVar(&config.Inverse, "inverse", false, "Compute the inverse transform.")
	fs.BoolVar(&config.Verify, "verify", false, "Re-compute with a direct DFT and compare (small series only).")
	fs.IntVar(&config.Workers, "workers", 0, "Parallel workers for sibling subtrees (0 = one per CPU).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the transform.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output the run summary in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "v", false, "Print leading output samples in the summary.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Minimum log level (debug, info, warn, error).")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// Apply environment variable overrides for flags not explicitly set
	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}

// setCustomUsage installs a usage message that groups the flags by concern.
func setCustomUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s -input FILE [options]\n\n", fs.Name())
		fmt.Fprintf(out, "Out-of-core radix-2 FFT over chunked datasets.\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
	}
}
