package timesource

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/beevik/ntp"
)

// fakeClock returns a fixed time
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time {
	return c.now
}

func (c fakeClock) Sleep(d time.Duration) {}

func TestSystem_Now(t *testing.T) {
	now := time.Unix(1700000000, 0)
	src := System{Clock: fakeClock{now: now}}

	got, err := src.Now()
	if err != nil {
		t.Fatalf("Now() error = %v, want nil", err)
	}
	if !got.Equal(now) {
		t.Errorf("Now() = %v, want %v", got, now)
	}
	if src.Name() != "system" {
		t.Errorf("Name() = %q, want %q", src.Name(), "system")
	}
}

func TestNTP_Now_AppliesOffset(t *testing.T) {
	now := time.Unix(1700000000, 0)
	src := NewNTP("pool.ntp.org", fakeClock{now: now})
	src.query = func(server string) (*ntp.Response, error) {
		if server != "pool.ntp.org" {
			t.Errorf("query server = %q, want %q", server, "pool.ntp.org")
		}
		return &ntp.Response{Stratum: 2, ClockOffset: 5 * time.Second}, nil
	}

	got, err := src.Now()
	if err != nil {
		t.Fatalf("Now() error = %v, want nil", err)
	}
	if want := now.Add(5 * time.Second); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
	if src.Name() != "ntp" {
		t.Errorf("Name() = %q, want %q", src.Name(), "ntp")
	}
}

func TestNTP_Now_QueryError(t *testing.T) {
	src := NewNTP("pool.ntp.org", fakeClock{now: time.Unix(1700000000, 0)})
	src.query = func(server string) (*ntp.Response, error) {
		return nil, errors.New("connection refused")
	}

	_, err := src.Now()
	if err == nil {
		t.Fatal("Now() error = nil, want query error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Now() error = %v, should wrap the query error", err)
	}
}

func TestNTP_Now_KissOfDeath(t *testing.T) {
	src := NewNTP("pool.ntp.org", fakeClock{now: time.Unix(1700000000, 0)})
	src.query = func(server string) (*ntp.Response, error) {
		return &ntp.Response{Stratum: 0}, nil
	}

	_, err := src.Now()
	if err == nil {
		t.Fatal("Now() error = nil, want kiss-of-death error")
	}
}
