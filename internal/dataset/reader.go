package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	apperrors "github.com/moble/daft/internal/errors"
)

// Load reads a dataset file into memory, promoting real-valued payloads to
// complex128. The returned buffer is row-major in the header's shape.
//
// Parameters:
//   - path: The dataset file to read.
//
// Returns:
//   - []complex128: The samples, promoted to complex if needed.
//   - Header: The decoded header (dtype reflects the stored payload).
//   - error: Any I/O or format error, wrapped with context.
func Load(path string) ([]complex128, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, apperrors.WrapError(err, "opening dataset %s", path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, Header{}, apperrors.WrapError(err, "reading dataset %s", path)
	}

	total := h.Samples()
	data := make([]complex128, total)
	buf := make([]byte, h.sampleBytes())
	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, Header{}, apperrors.WrapError(err, "reading sample %d of %s", i, path)
		}
		if h.DType == DTypeFloat64 {
			data[i] = complex(math.Float64frombits(binary.LittleEndian.Uint64(buf)), 0)
		} else {
			re := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
			data[i] = complex(re, im)
		}
	}
	return data, h, nil
}

// Write creates (or truncates) a dataset file with the given header and
// complete payload. Used by generators and tests; the streaming path goes
// through FileSink instead.
//
// Parameters:
//   - path: Destination file.
//   - h: Header describing the payload. DType must be DTypeComplex128 when
//     data carries imaginary parts.
//   - data: The samples, len equal to h.Samples().
//
// Returns:
//   - error: Any I/O error, or a ConfigError on a shape/payload mismatch.
func Write(path string, h Header, data []complex128) error {
	if h.Samples() != len(data) {
		return apperrors.NewConfigError("payload length %d does not match shape %v", len(data), h.Shape)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.WrapError(err, "creating dataset %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeHeader(w, h); err != nil {
		return err
	}
	buf := make([]byte, h.sampleBytes())
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(real(v)))
		if h.DType == DTypeComplex128 {
			binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(imag(v)))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ParseOutputSpec splits an output argument of the form path[:name] into the
// file path and dataset name, defaulting the name to "X". A lone trailing
// colon is rejected.
//
// Parameters:
//   - spec: The raw -output argument.
//
// Returns:
//   - string: The file path.
//   - string: The dataset name.
//   - error: A ConfigError when the spec is malformed.
func ParseOutputSpec(spec string) (string, string, error) {
	if spec == "" {
		return "", "", apperrors.NewConfigError("output path must not be empty")
	}
	idx := strings.LastIndex(spec, ":")
	if idx < 0 {
		return spec, DefaultDatasetName, nil
	}
	path, name := spec[:idx], spec[idx+1:]
	if path == "" || name == "" {
		return "", "", apperrors.NewConfigError("malformed output spec %q, want path[:dataset]", spec)
	}
	return path, name, nil
}

// String renders the header compactly for logs and reports.
func (h Header) String() string {
	dtype := "complex128"
	if h.DType == DTypeFloat64 {
		dtype = "float64"
	}
	return fmt.Sprintf("%s %s %v", h.Name, dtype, h.Shape)
}
