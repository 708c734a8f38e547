// Package snapshot persists the embedding matrix produced by ingest and
// loads it back for the index. The on-disk format is a NumPy .npy array so
// snapshots stay interchangeable with Python tooling.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloo-solutions/aula/internal/domain"
)

var npyMagic = []byte("\x93NUMPY")

var (
	descrPattern   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranPattern = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapePattern   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ErrUnsupportedFormat is returned for .npy files this package cannot read.
var ErrUnsupportedFormat = errors.New("unsupported npy format")

// EncodeNPY writes m as a little-endian float32 C-order .npy (format 1.0).
func EncodeNPY(w io.Writer, m *domain.Matrix) error {
	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d), }", m.Rows(), m.Dim())
	// magic(6) + version(2) + header length(2) + header, padded to 64 with a trailing newline
	total := 10 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("npy header too long: %d", len(header))
	}

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write npy header: %w", err)
	}

	data := make([]byte, 4*len(m.Data()))
	for i, v := range m.Data() {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}
	return nil
}

// DecodeNPY reads a 2-D C-order .npy array of '<f4' or '<f8' values.
// Float64 input is narrowed to float32.
func DecodeNPY(r io.Reader) (*domain.Matrix, error) {
	prefix := make([]byte, 8)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("failed to read npy magic: %w", err)
	}
	if !bytes.Equal(prefix[:6], npyMagic) {
		return nil, fmt.Errorf("%w: bad magic", ErrUnsupportedFormat)
	}

	var headerLen int
	switch prefix[6] {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: version %d.%d", ErrUnsupportedFormat, prefix[6], prefix[7])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	descr, rows, dim, err := parseHeader(string(header))
	if err != nil {
		return nil, err
	}

	size := 4
	if descr == "<f8" {
		size = 8
	}
	raw := make([]byte, rows*dim*size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("failed to read npy data: %w", err)
	}

	data := make([]float32, rows*dim)
	for i := range data {
		if size == 4 {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		} else {
			data[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:])))
		}
	}

	return domain.NewMatrix(rows, dim, data)
}

func parseHeader(h string) (descr string, rows, dim int, err error) {
	m := descrPattern.FindStringSubmatch(h)
	if m == nil {
		return "", 0, 0, fmt.Errorf("%w: missing descr", ErrUnsupportedFormat)
	}
	descr = m[1]
	if descr != "<f4" && descr != "<f8" {
		return "", 0, 0, fmt.Errorf("%w: dtype %s", ErrUnsupportedFormat, descr)
	}

	if m := fortranPattern.FindStringSubmatch(h); m == nil || m[1] != "False" {
		return "", 0, 0, fmt.Errorf("%w: fortran order", ErrUnsupportedFormat)
	}

	m = shapePattern.FindStringSubmatch(h)
	if m == nil {
		return "", 0, 0, fmt.Errorf("%w: missing shape", ErrUnsupportedFormat)
	}
	var dims []int
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil || n < 0 {
			return "", 0, 0, fmt.Errorf("%w: shape %q", ErrUnsupportedFormat, m[1])
		}
		dims = append(dims, n)
	}
	if len(dims) != 2 {
		return "", 0, 0, fmt.Errorf("%w: expected 2-D array, got shape (%s)", ErrUnsupportedFormat, m[1])
	}

	return descr, dims[0], dims[1], nil
}
