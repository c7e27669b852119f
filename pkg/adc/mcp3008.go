package adc

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// MCP3008Inputs is the number of single-ended inputs.
	MCP3008Inputs = 8
	// MCP3008MaxSpeed is the maximum SPI clock at 5V.
	MCP3008MaxSpeed = 3600 * physic.KiloHertz
	// DefaultSpeed is a clock that works at 2.7V as well.
	DefaultSpeed = 1 * physic.MegaHertz
)

// MCP3008 reads the 8-channel 10-bit SPI ADC.
type MCP3008 struct {
	mu   sync.Mutex
	conn spi.Conn
	port spi.PortCloser
}

// NewMCP3008 uses an already connected SPI connection.
func NewMCP3008(conn spi.Conn) *MCP3008 {
	return &MCP3008{conn: conn}
}

// OpenMCP3008 initializes the host drivers and connects to the ADC on the
// named SPI port. An empty name selects the first port available.
func OpenMCP3008(name string, speed physic.Frequency) (*MCP3008, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	if speed <= 0 {
		speed = DefaultSpeed
	}
	if speed > MCP3008MaxSpeed {
		speed = MCP3008MaxSpeed
	}

	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}

	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	return &MCP3008{conn: c, port: p}, nil
}

// Sample performs a single-ended conversion of input 0-7.
func (m *MCP3008) Sample(input int) (uint16, error) {
	if input < 0 || input >= MCP3008Inputs {
		return 0, fmt.Errorf("mcp3008 input %d: %w", input, ErrInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := readCommand(input)
	rx := make([]byte, len(tx))
	if err := m.conn.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("mcp3008 input %d: %w", input, err)
	}

	return uint16(rx[1]&0x03)<<8 | uint16(rx[2]), nil
}

// Close releases the SPI port if it was opened by OpenMCP3008.
func (m *MCP3008) Close() error {
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// readCommand builds the start bit, single-ended flag and input select.
func readCommand(input int) []byte {
	return []byte{0x01, byte(0x08|input) << 4, 0x00}
}
