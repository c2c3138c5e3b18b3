package timesource

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"github.com/antihunter/rtcsync/internal/clock"
)

// Source yields the time the device clock should be set to
type Source interface {
	// Now returns the current time according to this source
	Now() (time.Time, error)

	// Name returns the source name (system, ntp)
	Name() string
}

// System reads the host clock
type System struct {
	Clock clock.Clock
}

// Now returns the host time
func (s System) Now() (time.Time, error) {
	return s.Clock.Now(), nil
}

// Name returns "system"
func (s System) Name() string {
	return "system"
}

// NTP queries an NTP server and applies the measured clock offset to the
// host clock, the same correction an interactive time client applies before
// setting a system clock.
type NTP struct {
	Server string
	Clock  clock.Clock

	query func(server string) (*ntp.Response, error) // Swapped out in tests
}

// NewNTP creates an NTP time source for the given server
func NewNTP(server string, clk clock.Clock) *NTP {
	return &NTP{
		Server: server,
		Clock:  clk,
		query:  ntp.Query,
	}
}

// Now queries the server and returns the offset-corrected host time
func (n *NTP) Now() (time.Time, error) {
	resp, err := n.query(n.Server)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query NTP server %s: %w", n.Server, err)
	}

	// Stratum 0 is a kiss-of-death packet; its offset is meaningless
	if resp.Stratum == 0 {
		return time.Time{}, fmt.Errorf("NTP server %s sent a kiss-of-death response", n.Server)
	}

	return n.Clock.Now().Add(resp.ClockOffset), nil
}

// Name returns "ntp"
func (n *NTP) Name() string {
	return "ntp"
}
