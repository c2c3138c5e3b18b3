package serialio

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the subset of the serial transport the setter needs. Reads return
// (0, nil) when the read timeout expires with nothing buffered.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// Opener opens a serial port by name. The setter holds one of these so tests
// can substitute a fake transport.
type Opener func(name string, baud int, readTimeout time.Duration) (Port, error)

// Open opens a serial port at the given baud rate with default 8N1 framing
// and a bounded read timeout.
func Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	return port, nil
}

// List returns details for every serial port visible on the host, including
// USB metadata where the platform exposes it.
func List() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}
