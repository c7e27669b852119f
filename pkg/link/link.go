// Package link carries station lines over the serial port and turns received
// lines back into timestamped samples.
package link

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/itohio/waterqm/pkg/wire"
)

const (
	// BaudRate is fixed for the station link.
	BaudRate = 9600
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

var errConnected = errors.New("already connected")

// Sample is a received line stamped with its arrival time.
type Sample struct {
	Timestamp time.Time
	wire.Frame
}

// Device defines the interface for stations (serial or loopback).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan Sample
	IsConnected() bool
}

// Ensure devices implement Device.
var (
	_ Device = (*Serial)(nil)
	_ Device = (*Loopback)(nil)
)

// stream holds the state shared by all devices: the connection flag, the
// output channel and the reader lifecycle.
type stream struct {
	bufSize int

	mu        sync.RWMutex
	samples   chan Sample
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	now func() time.Time
}

func newStream(bufSize int) stream {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return stream{
		bufSize: bufSize,
		samples: make(chan Sample, bufSize),
		now:     time.Now,
	}
}

// Samples returns the channel for reading samples. It is closed when the
// device is closed or the underlying stream ends.
func (s *stream) Samples() <-chan Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples
}

// IsConnected returns whether the device is currently connected.
func (s *stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// start must be called with mu held.
func (s *stream) start(r io.Reader) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true
	go s.read(ctx, r, s.samples, s.done)
	return ctx
}

// stop must be called with mu held. closer unblocks the reader.
func (s *stream) stop(closer io.Closer) {
	s.cancel()
	if closer != nil {
		if err := closer.Close(); err != nil {
			log.Printf("Error closing link: %v", err)
		}
	}
	<-s.done
	s.connected = false
	// a closed device can be connected again
	s.samples = make(chan Sample, s.bufSize)
}

// read scans lines from r and parses them into samples. It owns out and
// closes it when it returns.
func (s *stream) read(ctx context.Context, r io.Reader, out chan<- Sample, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := wire.Parse(line)
		if err != nil {
			// the first line after connecting is often truncated
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case out <- Sample{Timestamp: s.now(), Frame: frame}:
		case <-ctx.Done():
			return
		default:
			log.Printf("Samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Error reading from link: %v", err)
	}
}
