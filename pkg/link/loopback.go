package link

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/itohio/waterqm/pkg/adc"
	"github.com/itohio/waterqm/pkg/poller"
	"github.com/itohio/waterqm/pkg/sensor"
)

// Loopback runs a station poll loop in-process and receives its lines, so the
// monitor can run without a serial port.
type Loopback struct {
	stream

	src      adc.Source
	set      sensor.Set
	inputs   [3]int
	interval time.Duration

	pr *io.PipeReader
}

// NewLoopback creates a loopback device polling src.
func NewLoopback(src adc.Source, set sensor.Set, inputs [3]int, interval time.Duration, bufSize int) *Loopback {
	return &Loopback{
		stream:   newStream(bufSize),
		src:      src,
		set:      set,
		inputs:   inputs,
		interval: interval,
	}
}

// Connect starts the poll loop and the receiver.
func (d *Loopback) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return errConnected
	}

	pr, pw := io.Pipe()
	p, err := poller.New(d.src, d.set, d.inputs, pw, d.interval)
	if err != nil {
		return err
	}
	d.pr = pr

	ctx := d.start(pr)
	go func() {
		err := p.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.ErrClosedPipe) {
			log.Printf("Loopback station stopped: %v", err)
		}
		pw.CloseWithError(err)
	}()

	return nil
}

// Close stops the poll loop and the receiver.
func (d *Loopback) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.stop(d.pr)
	d.pr = nil

	return nil
}
