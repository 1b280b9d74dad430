// Command gendata writes synthetic dataset files in the daft container
// format, for demos and manual testing of the transform pipeline.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/moble/daft/internal/dataset"
)

func main() {
	outputPath := flag.String("out", "signal.daft", "Output dataset file")
	shapeSpec := flag.String("shape", "1024", "Comma-separated shape, e.g. 4,1024")
	kind := flag.String("kind", "sine", "Signal kind: impulse, sine, ramp, random")
	freq := flag.Float64("freq", 8, "Cycles over the last axis for -kind sine")
	seed := flag.Int64("seed", 1, "Random seed for -kind random")
	name := flag.String("name", dataset.DefaultDatasetName, "Dataset name stored in the header")
	flag.Parse()

	shape, err := parseShape(*shapeSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing shape: %v\n", err)
		os.Exit(1)
	}

	total := 1
	for _, d := range shape {
		total *= d
	}
	n := shape[len(shape)-1]

	data, err := generate(*kind, total, n, *freq, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	header := dataset.Header{DType: dataset.DTypeComplex128, Name: *name, Shape: shape}
	if err := dataset.Write(*outputPath, header, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dataset: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s: %s\n", *outputPath, header)
}

// parseShape parses a comma-separated list of positive extents.
func parseShape(spec string) ([]int, error) {
	parts := strings.Split(spec, ",")
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid extent %q", p)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

// generate fills a buffer with the requested signal, repeated over the
// leading batch dimensions.
func generate(kind string, total, n int, freq float64, seed int64) ([]complex128, error) {
	data := make([]complex128, total)
	switch kind {
	case "impulse":
		for i := 0; i < total; i += n {
			data[i] = 1
		}
	case "sine":
		for i := range data {
			t := float64(i%n) / float64(n)
			data[i] = complex(math.Sin(2*math.Pi*freq*t), 0)
		}
	case "ramp":
		for i := range data {
			data[i] = complex(float64(i%n), 0)
		}
	case "random":
		rng := rand.New(rand.NewSource(seed))
		for i := range data {
			data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
	default:
		return nil, fmt.Errorf("unknown signal kind %q", kind)
	}
	return data, nil
}
