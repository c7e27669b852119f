package adc

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Mock simulates slowly drifting sensors around fixed raw levels.
type Mock struct {
	mu     sync.Mutex
	levels map[int]int
	noise  float64
	period time.Duration
	start  time.Time
	now    func() time.Time
}

// NewMock creates a mock source. levels maps inputs to their raw level, noise
// is the peak deviation in raw counts and period the waveform period.
func NewMock(levels map[int]int, noise float64, period time.Duration) *Mock {
	l := make(map[int]int, len(levels))
	for k, v := range levels {
		l[k] = v
	}
	if period <= 0 {
		period = 30 * time.Second
	}
	return &Mock{
		levels: l,
		noise:  noise,
		period: period,
		start:  time.Now(),
		now:    time.Now,
	}
}

// Sample returns the level of input with a deterministic sin/cos ripple.
func (m *Mock) Sample(input int) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.levels[input]
	if !ok {
		return 0, fmt.Errorf("mock input %d: %w", input, ErrInput)
	}

	phase := 2 * math.Pi * m.now().Sub(m.start).Seconds() / m.period.Seconds()
	// inputs drift out of phase with each other
	ripple := (math.Sin(phase+float64(input)) + 0.3*math.Cos(7*phase)) / 1.3 * m.noise

	v := math.Round(float64(level) + ripple)
	if v < 0 {
		v = 0
	} else if v > MaxValue {
		v = MaxValue
	}
	return uint16(v), nil
}

// Set changes the level of an input.
func (m *Mock) Set(input, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[input] = level
}

// Close implements Source.
func (m *Mock) Close() error { return nil }
