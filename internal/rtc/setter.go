package rtc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/antihunter/rtcsync/internal/clock"
	"github.com/antihunter/rtcsync/internal/logger"
	"github.com/antihunter/rtcsync/internal/serialio"
	"github.com/antihunter/rtcsync/internal/timesource"
)

// MinAcceptedEpoch is the oldest timestamp the device firmware accepts
// (2021-01-01T00:00:00Z). A host clock at or below it is almost certainly
// unset, and the device will silently drop the command.
const MinAcceptedEpoch = 1609459200

// MaxReplyBytes caps the device reply; anything longer is boot noise, not an
// acknowledgement line.
const MaxReplyBytes = 256

// Options configure a single synchronization run
type Options struct {
	// Port is the serial port name; empty means the run is skipped
	Port string

	// Baud is the serial line rate
	Baud int

	// BootDelay is how long to wait for the freshly flashed device to finish
	// rebooting before the port is reopened
	BootDelay time.Duration

	// SettleDelay is how long to wait after opening the port
	SettleDelay time.Duration

	// ResponseDelay is how long to wait after sending the command before
	// checking for a reply
	ResponseDelay time.Duration

	// ReadTimeout bounds each read while waiting for the reply
	ReadTimeout time.Duration
}

// Setter synchronizes a device real-time clock over a serial connection
type Setter struct {
	opts   Options
	source timesource.Source
	logger *logger.Logger
	clock  clock.Clock     // Time provider for testing
	open   serialio.Opener // Transport opener for testing
}

// NewSetter creates a Setter for the given options and time source
func NewSetter(opts Options, source timesource.Source, log *logger.Logger) *Setter {
	return &Setter{
		opts:   opts,
		source: source,
		logger: log,
		clock:  clock.RealClock{}, // Use real system time by default
		open:   serialio.Open,
	}
}

// Run executes the synchronization sequence, logging and discarding any
// transport failure. The surrounding build must continue whether or not the
// device clock was set, so Run never reports an error.
func (s *Setter) Run() {
	if s.opts.Port == "" {
		s.logger.Info("no upload port configured, skipping RTC sync")
		return
	}

	if err := s.Sync(); err != nil {
		s.logger.Error("RTC sync failed", "port", s.opts.Port, "error", err)
	}
}

// Sync runs the synchronization sequence once and returns the first
// transport failure it hits. The port, once opened, is closed before Sync
// returns on every path.
func (s *Setter) Sync() error {
	epoch := s.captureEpoch()

	s.logger.Info("setting device clock",
		"port", s.opts.Port,
		"epoch", epoch,
		"utc", time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05 UTC"))

	if epoch <= MinAcceptedEpoch {
		s.logger.Warn("host time predates the firmware minimum, device will likely reject the command",
			"epoch", epoch,
			"min_epoch", int64(MinAcceptedEpoch))
	}

	if err := s.transmit(epoch); err != nil {
		return err
	}

	s.logger.Info("RTC sync done", "port", s.opts.Port)
	return nil
}

// captureEpoch reads the configured time source, falling back to the host
// clock when the source fails
func (s *Setter) captureEpoch() int64 {
	t, err := s.source.Now()
	if err != nil {
		s.logger.Warn("time source failed, falling back to host clock",
			"source", s.source.Name(),
			"error", err)
		t = s.clock.Now()
	}
	return t.Unix()
}

// transmit opens the port, sends the command, and reads the optional reply.
// The port is closed on every exit path.
func (s *Setter) transmit(epoch int64) error {
	// The device reboots after flashing; reopening the port too early fails
	// or catches the bootloader
	s.clock.Sleep(s.opts.BootDelay)

	port, err := s.open(s.opts.Port, s.opts.Baud, s.opts.ReadTimeout)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.opts.Port, err)
	}
	defer func() {
		if cerr := port.Close(); cerr != nil {
			s.logger.Warn("failed to close serial port", "port", s.opts.Port, "error", cerr)
		}
	}()

	s.clock.Sleep(s.opts.SettleDelay)

	cmd := fmt.Sprintf("SETTIME:%d\n", epoch)
	if _, err := port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("flush command: %w", err)
	}

	s.clock.Sleep(s.opts.ResponseDelay)

	reply, err := readLine(port)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if reply != "" {
		s.logger.Info("device response", "reply", reply)
	}

	return nil
}

// readLine reads a single newline-terminated reply from the port. The reply
// is optional: a zero-length read means the timeout expired with nothing
// buffered, which ends the line without error. The result is trimmed of
// surrounding whitespace.
func readLine(port serialio.Port) (string, error) {
	var line bytes.Buffer
	buf := make([]byte, 1)

	for line.Len() < MaxReplyBytes {
		n, err := port.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if n == 0 {
			// Read timeout: nothing more is coming
			break
		}
		if buf[0] == '\n' {
			break
		}
		line.WriteByte(buf[0])
	}

	return strings.TrimSpace(line.String()), nil
}
