// Package poller runs the station loop: acquire three samples, convert them,
// write one line, wait, repeat.
package poller

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/itohio/waterqm/pkg/adc"
	"github.com/itohio/waterqm/pkg/sensor"
	"github.com/itohio/waterqm/pkg/wire"
)

// DefaultInterval is the delay between two lines.
const DefaultInterval = time.Second

// Poller owns the sensor channels and the single writer of the data stream.
type Poller struct {
	src      adc.Source
	set      sensor.Set
	inputs   [3]int // pH, water level, turbidity
	w        io.Writer
	interval time.Duration
	buf      []byte

	// Logger receives diagnostics. It never shares the data stream.
	Logger *log.Logger
}

// New creates a Poller. inputs are the ADC inputs of pH, water level and
// turbidity. A non-positive interval selects DefaultInterval.
func New(src adc.Source, set sensor.Set, inputs [3]int, w io.Writer, interval time.Duration) (*Poller, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		src:      src,
		set:      set,
		inputs:   inputs,
		w:        w,
		interval: interval,
		buf:      make([]byte, 0, 32),
		Logger:   log.Default(),
	}, nil
}

// Poll acquires and converts one sample per channel. A failed acquisition is
// logged and reported as an invalid reading.
func (p *Poller) Poll() sensor.Readings {
	ph, phOK := p.sample(p.set.PH.Name, p.inputs[0])
	level, levelOK := p.sample(p.set.WaterLevel.Name, p.inputs[1])
	turbidity, turbidityOK := p.sample(p.set.Turbidity.Name, p.inputs[2])

	r := p.set.Convert(ph, level, turbidity)
	if !phOK {
		r.PH = sensor.Reading{}
	}
	if !levelOK {
		r.WaterLevel = sensor.Reading{}
	}
	if !turbidityOK {
		r.Turbidity = sensor.Reading{}
	}

	p.logInvalid(p.set.PH, ph, phOK, r.PH)
	p.logInvalid(p.set.WaterLevel, level, levelOK, r.WaterLevel)
	p.logInvalid(p.set.Turbidity, turbidity, turbidityOK, r.Turbidity)

	return r
}

// Step polls once and writes the line. The write is synchronous and unbuffered.
func (p *Poller) Step() (sensor.Readings, error) {
	r := p.Poll()
	p.buf = wire.Append(p.buf[:0], r.Frame())
	if _, err := p.w.Write(p.buf); err != nil {
		return r, fmt.Errorf("write line: %w", err)
	}
	return r, nil
}

// Run repeats Step every interval until ctx is done or a write fails.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if _, err := p.Step(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

func (p *Poller) sample(name string, input int) (int, bool) {
	v, err := p.src.Sample(input)
	if err != nil {
		p.logf("%s: sample input %d: %v", name, input, err)
		return 0, false
	}
	return int(v), true
}

func (p *Poller) logInvalid(ch sensor.Channel, raw int, sampled bool, r sensor.Reading) {
	if !sampled || r.Valid {
		return
	}
	if ch.PassThrough {
		p.logf("%s: raw %d gives %.2f %s, outside [%g, %g], passed through", ch.Name, raw, r.Value, ch.Unit, ch.ValidMin, ch.ValidMax)
		return
	}
	p.logf("%s: raw %d outside [%g, %g] %s, reported as %.2f", ch.Name, raw, ch.ValidMin, ch.ValidMax, ch.Unit, r.Value)
}

func (p *Poller) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
	}
}
