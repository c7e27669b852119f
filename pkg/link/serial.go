package link

import (
	"fmt"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		desc := d.Name
		if d.IsUSB {
			desc = fmt.Sprintf("%s (USB %s:%s %s)", d.Name, d.VID, d.PID, d.Product)
		}
		result = append(result, Port{Name: d.Name, Description: desc})
	}

	return result, nil
}

// Mode returns the fixed line settings: 9600 baud, 8N1.
func Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenPort opens a serial port with the link's line settings.
func OpenPort(name string) (serial.Port, error) {
	port, err := serial.Open(name, Mode())
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return port, nil
}

// Serial receives station lines from a serial port.
type Serial struct {
	stream

	port string
	conn serial.Port
}

// NewSerial creates a receiver for the given port and channel buffer size.
func NewSerial(port string, bufSize int) *Serial {
	return &Serial{
		stream: newStream(bufSize),
		port:   port,
	}
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return errConnected
	}

	conn, err := OpenPort(d.port)
	if err != nil {
		return err
	}
	d.conn = conn
	d.start(conn)

	return nil
}

// Close closes the port and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.stop(d.conn)
	d.conn = nil

	return nil
}
