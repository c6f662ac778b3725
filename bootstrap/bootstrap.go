// Package bootstrap opens the MAVLink link and waits for a remote system to
// show up before monitoring begins.
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/relistan/go-director"
	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/backends/mavlink"
	"github.com/streamdal/mavmon/printer"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 10 * time.Second
	DefaultGracePeriod  = 2 * time.Second
)

var (
	ErrMissingOpener       = errors.New("Opener cannot be nil")
	ErrMissingPrinter      = errors.New("Printer cannot be nil")
	ErrInvalidPollInterval = errors.New("PollInterval must be greater than 0")
	ErrInvalidTimeout      = errors.New("Timeout cannot be negative")
	ErrInvalidGracePeriod  = errors.New("GracePeriod cannot be negative")
	ErrMissingConn         = errors.New("connection cannot be nil")

	// ErrNoCounterpart is returned when neither a system nor a single frame
	// was seen within the timeout and grace period.
	ErrNoCounterpart = errors.New("no system detected")

	errFound = errors.New("counterpart found")
)

type State int

const (
	StateConnecting State = iota
	StateConnected
	StateListenOnly
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateListenOnly:
		return "listen-only"
	}

	return fmt.Sprintf("unknown(%d)", int(s))
}

// ConnectionError is returned when the transport cannot be opened.
type ConnectionError struct {
	Descriptor string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed for '%s': %s", e.Descriptor, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Opener opens a link for a connection URL.
type Opener func(descriptor string) (mavlink.IConn, error)

// OpenMAVLink is the production Opener.
func OpenMAVLink(descriptor string) (mavlink.IConn, error) {
	link, err := mavlink.Open(descriptor)
	if err != nil {
		return nil, err
	}

	return link, nil
}

type Config struct {
	Opener       Opener
	Printer      printer.IPrinter
	Timeout      time.Duration
	GracePeriod  time.Duration
	PollInterval time.Duration
}

type Bootstrapper struct {
	*Config

	stateMtx *sync.RWMutex
	state    State
	log      *logrus.Entry
}

func New(cfg *Config) (*Bootstrapper, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	return &Bootstrapper{
		Config:   cfg,
		stateMtx: &sync.RWMutex{},
		state:    StateConnecting,
		log:      logrus.WithField("pkg", "bootstrap"),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if cfg.Opener == nil {
		return ErrMissingOpener
	}

	if cfg.Printer == nil {
		return ErrMissingPrinter
	}

	if cfg.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if cfg.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if cfg.GracePeriod < 0 {
		return ErrInvalidGracePeriod
	}

	return nil
}

func (b *Bootstrapper) State() State {
	b.stateMtx.RLock()
	defer b.stateMtx.RUnlock()

	return b.state
}

func (b *Bootstrapper) setState(s State) {
	b.stateMtx.Lock()
	defer b.stateMtx.Unlock()

	b.log.Debugf("state %s -> %s", b.state, s)
	b.state = s
}

// Connect opens the transport. Any failure is a *ConnectionError.
func (b *Bootstrapper) Connect(descriptor string) (mavlink.IConn, error) {
	conn, err := b.Opener(descriptor)
	if err != nil {
		return nil, &ConnectionError{Descriptor: descriptor, Err: err}
	}

	if conn == nil {
		return nil, &ConnectionError{Descriptor: descriptor, Err: ErrMissingConn}
	}

	return conn, nil
}

// AwaitCounterpart waits for a remote system to appear on conn.
//
// It returns the first discovered counterpart, or nil with a nil error when
// nothing announced itself but frames are flowing (listen-only mode). When the
// wire stayed silent for the whole timeout and grace period it returns
// ErrNoCounterpart.
func (b *Bootstrapper) AwaitCounterpart(ctx context.Context, conn mavlink.IConn) (*mavlink.Counterpart, error) {
	if conn == nil {
		return nil, ErrMissingConn
	}

	b.Printer.Print("Waiting for system to connect...")

	found, err := b.poll(ctx, conn, b.Timeout)
	if err != nil {
		return nil, err
	}

	if found != nil {
		return b.connected(found), nil
	}

	b.Printer.Warn(fmt.Sprintf("No autopilot system detected after %s.", b.Timeout))
	b.Printer.Print("Continuing to listen for MAVLink messages anyway...")

	found, err = b.poll(ctx, conn, b.GracePeriod)
	if err != nil {
		return nil, err
	}

	if found != nil {
		return b.connected(found), nil
	}

	if frames := conn.FramesSeen(); frames > 0 {
		b.log.Debugf("no heartbeat seen but %d frame(s) received", frames)
		b.Printer.Print("Listening for MAVLink messages...")
		b.setState(StateListenOnly)

		return nil, nil
	}

	b.Printer.Warn("No system detected. MAVLink messages may not be received.")
	b.Printer.Print("Make sure the device is sending MAVLink messages.")

	return nil, ErrNoCounterpart
}

func (b *Bootstrapper) connected(c *mavlink.Counterpart) *mavlink.Counterpart {
	b.Printer.Print(fmt.Sprintf("System connected! (system %d, component %d)", c.SystemID, c.ComponentID))
	b.setState(StateConnected)

	return c
}

// poll checks conn every PollInterval for up to window. A nil counterpart
// with a nil error means the window elapsed without a discovery.
func (b *Bootstrapper) poll(ctx context.Context, conn mavlink.IConn, window time.Duration) (*mavlink.Counterpart, error) {
	iterations := int(window/b.PollInterval) + 1

	looper := director.NewImmediateTimedLooper(iterations, b.PollInterval, make(chan error, 1))

	stopCh := make(chan struct{})
	defer close(stopCh)

	go func() {
		select {
		case <-ctx.Done():
			looper.Quit()
		case <-stopCh:
		}
	}()

	var found *mavlink.Counterpart

	looper.Loop(func() error {
		if cps := conn.Counterparts(); len(cps) > 0 {
			found = &cps[0]
			return errFound
		}

		return nil
	})

	err := looper.Wait()

	switch {
	case err == errFound:
		return found, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		return nil, errors.Wrap(err, "unable to poll for counterparts")
	}

	return nil, nil
}
