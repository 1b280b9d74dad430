// Package dataset implements the on-disk container that daft reads series
// from and streams transform results into. The format is deliberately small:
// a fixed magic, a dtype tag, a dataset name, the shape, then the raw
// little-endian payload in row-major order. Chunk writes address absolute
// file positions, which makes them naturally idempotent by offset.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies a daft dataset file.
var Magic = [4]byte{'D', 'A', 'F', 'T'}

// FormatVersion is the current container version.
const FormatVersion uint16 = 1

// Supported payload dtypes.
const (
	// DTypeFloat64 marks a real-valued payload; it is promoted to complex
	// on load.
	DTypeFloat64 uint8 = 1
	// DTypeComplex128 marks an interleaved (real, imag) float64 payload.
	DTypeComplex128 uint8 = 2
)

// DefaultDatasetName is used when an output path carries no explicit
// dataset name.
const DefaultDatasetName = "X"

// Header describes a dataset file's payload.
type Header struct {
	// DType is one of DTypeFloat64, DTypeComplex128.
	DType uint8
	// Name is the dataset name (default "X").
	Name string
	// Shape is the row-major logical shape of the payload.
	Shape []int
}

// size returns the encoded header length in bytes.
func (h Header) size() int64 {
	return int64(4 + 2 + 1 + 1 + 2 + len(h.Name) + 8*len(h.Shape))
}

// Samples returns the total number of payload samples.
func (h Header) Samples() int {
	total := 1
	for _, d := range h.Shape {
		total *= d
	}
	return total
}

// sampleBytes returns the byte width of one sample for the header's dtype.
func (h Header) sampleBytes() int {
	if h.DType == DTypeFloat64 {
		return 8
	}
	return 16
}

// writeHeader encodes h to w.
func writeHeader(w io.Writer, h Header) error {
	if len(h.Name) > int(^uint16(0)) {
		return fmt.Errorf("dataset name too long: %d bytes", len(h.Name))
	}
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, FormatVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.DType); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(h.Shape))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(h.Name))); err != nil {
		return err
	}
	if _, err := w.Write([]byte(h.Name)); err != nil {
		return err
	}
	for _, d := range h.Shape {
		if err := binary.Write(w, binary.LittleEndian, uint64(d)); err != nil {
			return err
		}
	}
	return nil
}

// readHeader decodes a Header from r, validating magic and version.
func readHeader(r io.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, fmt.Errorf("reading dataset magic: %w", err)
	}
	if magic != Magic {
		return Header{}, fmt.Errorf("not a daft dataset (magic %q)", magic)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return Header{}, err
	}
	if version != FormatVersion {
		return Header{}, fmt.Errorf("unsupported dataset version %d", version)
	}

	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.DType); err != nil {
		return Header{}, err
	}
	if h.DType != DTypeFloat64 && h.DType != DTypeComplex128 {
		return Header{}, fmt.Errorf("unknown dataset dtype %d", h.DType)
	}
	var ndim uint8
	if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
		return Header{}, err
	}
	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return Header{}, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Header{}, err
	}
	h.Name = string(name)
	h.Shape = make([]int, ndim)
	for i := range h.Shape {
		var d uint64
		if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
			return Header{}, err
		}
		if d == 0 {
			return Header{}, fmt.Errorf("dataset dimension %d is zero", i)
		}
		h.Shape[i] = int(d)
	}
	return h, nil
}
