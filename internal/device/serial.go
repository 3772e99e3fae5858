package device

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

const (
	DefaultPort     = "/dev/ttyACM0"
	DefaultBaudRate = 9600
)

// Serial is a Source backed by a serial port.
type Serial struct {
	port  serial.Port
	lines *LineSource
}

// OpenSerial opens path at baud 8N1.
func OpenSerial(path string, baud int) (*Serial, error) {
	if path == "" {
		path = DefaultPort
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", path, err)
	}
	return &Serial{port: port, lines: NewLineSource(port)}, nil
}

// Next implements Source.
func (s *Serial) Next(ctx context.Context) (string, error) {
	return s.lines.Next(ctx)
}

// Close releases the port, unblocking a pending Next.
func (s *Serial) Close() error {
	return s.port.Close()
}
