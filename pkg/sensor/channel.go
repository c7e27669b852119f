package sensor

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// DefaultRawMax is the full scale of a 10-bit ADC (0-1023).
	DefaultRawMax = 1023
	// DefaultRefVoltage is the ADC reference voltage (V).
	DefaultRefVoltage = 5.0
)

// Transfer selects how a raw sample is turned into a physical value.
type Transfer int

const (
	// Linear converts raw to voltage, then applies slope and offset.
	Linear Transfer = iota
	// Remap maps the raw sample directly onto an output range using integer
	// arithmetic, ignoring the reference voltage.
	Remap
)

// String returns the configuration name of the transfer.
func (t Transfer) String() string {
	switch t {
	case Linear:
		return "linear"
	case Remap:
		return "remap"
	default:
		return fmt.Sprintf("transfer(%d)", int(t))
	}
}

// RemapRange describes an integer range mapping, InMin..InMax onto OutMin..OutMax.
// Values outside the input range are extrapolated.
type RemapRange struct {
	InMin  int
	InMax  int
	OutMin int
	OutMax int
}

// Channel is the calibration of one analog sensor input.
// It is a value type and is never modified by conversion.
type Channel struct {
	Name string
	Unit string

	RawMax     int     // Full scale raw value (1023 for 10-bit)
	RefVoltage float32 // ADC reference voltage (V)

	Transfer Transfer
	Slope    float32    // Linear: units per volt
	Offset   float32    // Linear: units
	Remap    RemapRange // Remap: raw input range to output range
	Floor    bool       // Clamp negative values to 0 before validation

	ValidMin float32
	ValidMax float32

	// PassThrough reports out-of-range values unchanged instead of the 0.0
	// sentinel. The reading is still tagged invalid.
	PassThrough bool
}

// Reading is the result of a single conversion.
type Reading struct {
	Value float32
	Valid bool
}

var (
	// ErrRawMax is returned when a channel has no usable full scale.
	ErrRawMax = errors.New("raw max must be > 0")
	// ErrRefVoltage is returned when the reference voltage is not positive.
	ErrRefVoltage = errors.New("reference voltage must be > 0")
	// ErrValidRange is returned when ValidMin > ValidMax.
	ErrValidRange = errors.New("valid min is greater than valid max")
	// ErrRemapRange is returned when the remap input range is empty.
	ErrRemapRange = errors.New("remap input range is empty")
)

// Validate checks that the channel calibration can be used for conversion.
func (c Channel) Validate() error {
	if c.RawMax <= 0 {
		return fmt.Errorf("channel %s: %w", c.Name, ErrRawMax)
	}
	if c.ValidMin > c.ValidMax {
		return fmt.Errorf("channel %s: %w", c.Name, ErrValidRange)
	}
	switch c.Transfer {
	case Linear:
		if c.RefVoltage <= 0 {
			return fmt.Errorf("channel %s: %w", c.Name, ErrRefVoltage)
		}
	case Remap:
		if c.Remap.InMin == c.Remap.InMax {
			return fmt.Errorf("channel %s: %w", c.Name, ErrRemapRange)
		}
	default:
		return fmt.Errorf("channel %s: unknown transfer %v", c.Name, c.Transfer)
	}
	return nil
}

// Voltage converts a raw sample to volts at the channel's reference.
func (c Channel) Voltage(raw int) float32 {
	return float32(c.clampRaw(raw)) * (c.RefVoltage / float32(c.RawMax))
}

// Convert turns a raw ADC sample into a validated reading.
//
// Out-of-range values yield {0, false} unless the channel is PassThrough, in
// which case the value is kept and only the tag marks it invalid. Non-finite
// values always yield {0, false}.
func Convert(raw int, c Channel) Reading {
	var value float32
	switch c.Transfer {
	case Remap:
		value = float32(remap(c.clampRaw(raw), c.Remap))
	default:
		value = c.Voltage(raw)*c.Slope + c.Offset
	}

	if math32.IsNaN(value) || math32.IsInf(value, 0) {
		return Reading{}
	}

	if c.Floor && value < 0 {
		value = 0
	}

	if value < c.ValidMin || value > c.ValidMax {
		if c.PassThrough {
			return Reading{Value: value, Valid: false}
		}
		return Reading{Value: 0, Valid: false}
	}

	return Reading{Value: value, Valid: true}
}

func (c Channel) clampRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if c.RawMax > 0 && raw > c.RawMax {
		return c.RawMax
	}
	return raw
}

// remap mirrors the integer map() found on microcontroller cores: the division
// truncates toward zero.
func remap(x int, r RemapRange) int {
	if r.InMax == r.InMin {
		return r.OutMin
	}
	return (x-r.InMin)*(r.OutMax-r.OutMin)/(r.InMax-r.InMin) + r.OutMin
}
