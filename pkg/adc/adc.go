// Package adc provides raw 10-bit sample sources for the station.
package adc

import (
	"errors"
	"fmt"
)

// MaxValue is the full scale of a 10-bit conversion.
const MaxValue = 1023

// ErrInput is returned when a source does not have the requested input.
var ErrInput = errors.New("invalid input")

// Source delivers raw samples, 0 to MaxValue, from numbered analog inputs.
type Source interface {
	Sample(input int) (uint16, error)
	Close() error
}

// Ensure sources implement Source.
var (
	_ Source = (*MCP3008)(nil)
	_ Source = (*Mock)(nil)
	_ Source = (*averaged)(nil)
)

type averaged struct {
	src Source
	n   int
}

// Averaged wraps src so every sample is the mean of n consecutive conversions.
// For n <= 1 src is returned unchanged.
func Averaged(src Source, n int) Source {
	if n <= 1 {
		return src
	}
	return &averaged{src: src, n: n}
}

func (a *averaged) Sample(input int) (uint16, error) {
	var sum uint32
	for i := 0; i < a.n; i++ {
		v, err := a.src.Sample(input)
		if err != nil {
			return 0, fmt.Errorf("sample %d/%d: %w", i+1, a.n, err)
		}
		sum += uint32(v)
	}
	// round to nearest
	return uint16((sum + uint32(a.n)/2) / uint32(a.n)), nil
}

func (a *averaged) Close() error {
	return a.src.Close()
}
