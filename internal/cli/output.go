// Package cli provides output utilities for presenting transform results.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/moble/daft/pkg/models"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// Input is the path of the transformed dataset, for the summary header.
	Input string
	// Output is the destination spec when the result was streamed.
	Output string
	// Inverse reports whether the inverse transform was computed.
	Inverse bool
	// JSONOutput emits the summary as a single JSON object.
	JSONOutput bool
	// Quiet mode suppresses verbose output.
	Quiet bool
	// Verbose shows leading output samples.
	Verbose bool
}

// DisplaySummary prints the outcome of a transform run. In quiet mode it
// prints a single machine-friendly line; in JSON mode it emits a
// TransformSummary object; otherwise it renders an aligned human-readable
// report.
//
// Parameters:
//   - out: The output writer.
//   - result: The transform result to present.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if JSON encoding fails.
func DisplaySummary(out io.Writer, result models.TransformResult, config OutputConfig) error {
	if config.JSONOutput {
		return writeJSONSummary(out, result, config)
	}
	if config.Quiet {
		fmt.Fprintf(out, "%s %d %s\n", directionLabel(config.Inverse), result.Length, FormatExecutionDuration(result.Duration))
		return nil
	}

	fmt.Fprintf(out, "\n%s--- Transform summary ---%s\n", ColorBold(), ColorReset())
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Direction\t: %s%s%s\n", ColorMagenta(), directionLabel(config.Inverse), ColorReset())
	fmt.Fprintf(w, "Shape\t: %s%s%s\n", ColorCyan(), formatShape(result.Shape), ColorReset())
	fmt.Fprintf(w, "Axis length\t: %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprintf("%d", result.Length)), ColorReset())
	fmt.Fprintf(w, "Chunk size\t: %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprintf("%d", result.ChunkSize)), ColorReset())
	fmt.Fprintf(w, "Graph nodes\t: %s%d%s\n", ColorCyan(), result.NodeCount, ColorReset())
	fmt.Fprintf(w, "Base cases\t: %s%d%s\n", ColorCyan(), result.BaseCases, ColorReset())
	fmt.Fprintf(w, "Recombinations\t: %s%d%s\n", ColorCyan(), result.Recombinations, ColorReset())
	fmt.Fprintf(w, "Cache hits\t: %s%d%s\n", ColorCyan(), result.CacheHits, ColorReset())
	if result.ChunksWritten > 0 {
		fmt.Fprintf(w, "Chunks written\t: %s%d%s\n", ColorCyan(), result.ChunksWritten, ColorReset())
	}
	fmt.Fprintf(w, "Duration\t: %s%s%s\n", ColorGreen(), FormatExecutionDuration(result.Duration), ColorReset())
	if result.Verified {
		fmt.Fprintf(w, "Verification\t: %spassed%s\n", ColorGreen(), ColorReset())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if config.Output != "" {
		fmt.Fprintf(out, "\n%s✓ Result written to: %s%s%s\n", ColorGreen(), ColorCyan(), config.Output, ColorReset())
	}
	if config.Verbose && len(result.Values) > 0 {
		displaySamples(out, result.Values)
	}
	return nil
}

// displaySamples prints the leading output values for inspection.
func displaySamples(out io.Writer, values []complex128) {
	limit := SampleDisplayLimit
	if len(values) < limit {
		limit = len(values)
	}
	fmt.Fprintf(out, "\n%s--- Leading output samples ---%s\n", ColorBold(), ColorReset())
	for k := 0; k < limit; k++ {
		v := values[k]
		fmt.Fprintf(out, "X[%d] = %s%+.6e%+.6ei%s\n", k, ColorGreen(), real(v), imag(v), ColorReset())
	}
	if len(values) > limit {
		fmt.Fprintf(out, "... (%s more values)\n", formatNumberString(fmt.Sprintf("%d", len(values)-limit)))
	}
}

// writeJSONSummary encodes the run summary as a single JSON object.
func writeJSONSummary(out io.Writer, result models.TransformResult, config OutputConfig) error {
	summary := models.TransformSummary{
		Input:          config.Input,
		Output:         config.Output,
		Inverse:        config.Inverse,
		Shape:          result.Shape,
		Axis:           result.Axis,
		Length:         result.Length,
		ChunkSize:      result.ChunkSize,
		NodeCount:      result.NodeCount,
		BaseCases:      result.BaseCases,
		Recombinations: result.Recombinations,
		CacheHits:      result.CacheHits,
		ChunksWritten:  result.ChunksWritten,
		DurationMs:     float64(result.Duration.Microseconds()) / 1000.0,
		Verified:       result.Verified,
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// directionLabel names the transform direction for display.
func directionLabel(inverse bool) string {
	if inverse {
		return "IFFT"
	}
	return "FFT"
}

// formatShape renders a shape like "[4 1024 2]" as "4x1024x2".
func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return strings.Join(parts, "x")
}

// formatNumberString inserts thousand separators into a numeric string.
//
// Parameters:
//   - s: The numeric string to format.
//
// Returns:
//   - string: The formatted string with comma separators.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	numSeparators := (n - 1) / 3
	capacity := len(prefix) + n + numSeparators
	var builder strings.Builder
	builder.Grow(capacity)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])

	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
