// Package wire encodes and decodes the station's serial line format:
//
//	<pH>,<waterLevel>,<turbidity>\n
//
// Each value carries exactly two decimal digits.
package wire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Separator between fields.
	Separator = ','
	// Terminator ends every line.
	Terminator = '\n'
	// Decimals is the number of fractional digits per field.
	Decimals = 2
	// Fields is the number of values per line.
	Fields = 3
)

var (
	// ErrFieldCount is returned when a line does not hold exactly three values.
	ErrFieldCount = errors.New("expected 3 comma-separated values")
	// ErrNotFinite is returned for NaN or infinite fields.
	ErrNotFinite = errors.New("value is not finite")
)

// Frame is one line of readings.
type Frame struct {
	PH         float32
	WaterLevel float32
	Turbidity  float32
}

// Append appends the encoded line, including the terminator, to dst.
func Append(dst []byte, f Frame) []byte {
	dst = appendValue(dst, f.PH)
	dst = append(dst, Separator)
	dst = appendValue(dst, f.WaterLevel)
	dst = append(dst, Separator)
	dst = appendValue(dst, f.Turbidity)
	return append(dst, Terminator)
}

// Format returns the encoded line, including the terminator.
func Format(f Frame) string {
	return string(Append(make([]byte, 0, 24), f))
}

func appendValue(dst []byte, v float32) []byte {
	f := float64(v)
	// -0.00 would be a distinct string for the same reading
	if math.IsNaN(f) || math.IsInf(f, 0) || (f > -0.005 && f < 0.005) {
		f = 0
	}
	return strconv.AppendFloat(dst, f, 'f', Decimals, 32)
}

// Parse decodes one line. Surrounding whitespace and a trailing CR are ignored.
func Parse(line string) (Frame, error) {
	parts := strings.Split(strings.TrimSpace(line), string(Separator))
	if len(parts) != Fields {
		return Frame{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(parts))
	}

	var vals [Fields]float32
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return Frame{}, fmt.Errorf("field %d: %w", i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Frame{}, fmt.Errorf("field %d: %w", i, ErrNotFinite)
		}
		vals[i] = float32(v)
	}

	return Frame{PH: vals[0], WaterLevel: vals[1], Turbidity: vals[2]}, nil
}
