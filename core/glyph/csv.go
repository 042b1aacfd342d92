package glyph

import (
	"fmt"
	"strconv"
	"strings"
)

// The device application expects one row per frame, every cell followed by
// a separator (including the last), and CRLF after every row (including the
// last). A row of N cells therefore carries N separators.
const (
	cellSeparator = ","
	rowTerminator = "\r\n"
)

// EncodeCSV renders the matrix in the device CSV grammar. It fails with
// ErrMatrixShape if any row is not ZoneCount wide or any cell is outside
// the brightness range, rather than emitting a truncated document.
func EncodeCSV(m Matrix) (string, error) {
	var b strings.Builder
	for i, row := range m {
		if len(row) != ZoneCount {
			return "", fmt.Errorf("%w: row %d has %d cells, want %d", ErrMatrixShape, i, len(row), ZoneCount)
		}
		for _, v := range row {
			if v < 0 || v > MaxBrightness {
				return "", fmt.Errorf("%w: row %d cell value %d outside [0,%d]", ErrMatrixShape, i, v, MaxBrightness)
			}
			b.WriteString(strconv.Itoa(v))
			b.WriteString(cellSeparator)
		}
		b.WriteString(rowTerminator)
	}
	return b.String(), nil
}

// DecodeCSV is the exact inverse of EncodeCSV. It rejects structurally
// invalid text with ErrMalformedPayload instead of padding or truncating:
// wrong column counts, missing trailing separators, non-integer cells and
// out-of-range values all fail.
func DecodeCSV(text string) (Matrix, error) {
	lines := strings.Split(text, rowTerminator)
	// The trailing terminator after the final row produces one empty
	// trailing element.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	m := make(Matrix, 0, len(lines))
	for i, line := range lines {
		if !strings.HasSuffix(line, cellSeparator) {
			return nil, fmt.Errorf("%w: row %d missing trailing separator", ErrMalformedPayload, i)
		}
		cells := strings.Split(strings.TrimSuffix(line, cellSeparator), cellSeparator)
		if len(cells) != ZoneCount {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformedPayload, i, len(cells), ZoneCount)
		}
		row := make([]int, ZoneCount)
		for j, cell := range cells {
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d value %q is not an integer", ErrMalformedPayload, i, cell)
			}
			if v < 0 || v > MaxBrightness {
				return nil, fmt.Errorf("%w: row %d value %d outside [0,%d]", ErrMalformedPayload, i, v, MaxBrightness)
			}
			row[j] = v
		}
		m = append(m, row)
	}
	return m, nil
}
