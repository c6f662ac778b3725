// Package ingest filters inbound MAVLink messages down to the monitored set
// and feeds them into the stats registry.
//
// Deliveries from the link are pushed onto a bounded queue; a single drain
// goroutine records them. What happens when the queue is full is decided by
// the configured Policy.
package ingest

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/backends/mavlink"
)

const DefaultQueueSize = 1024

type Policy int

const (
	// PolicyBlock makes the delivery wait for queue space; nothing is lost.
	PolicyBlock Policy = iota

	// PolicyDrop discards the message when the queue is full and counts it.
	PolicyDrop
)

func (p Policy) String() string {
	switch p {
	case PolicyBlock:
		return "block"
	case PolicyDrop:
		return "drop"
	}

	return fmt.Sprintf("unknown(%d)", int(p))
}

// ParsePolicy maps the CLI spelling of a policy to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "block":
		return PolicyBlock, nil
	case "drop":
		return PolicyDrop, nil
	}

	return PolicyBlock, fmt.Errorf("unknown backpressure policy '%s'", s)
}

var (
	ErrMissingSource    = errors.New("Source cannot be nil")
	ErrMissingRecorder  = errors.New("Recorder cannot be nil")
	ErrMissingMonitored = errors.New("Monitored cannot be empty")
	ErrInvalidQueueSize = errors.New("QueueSize must be greater than 0")
	ErrAlreadyStarted   = errors.New("ingestor already started")
	ErrStopped          = errors.New("ingestor has been stopped")
)

// Source is where messages come from.
type Source interface {
	Subscribe(filter string, fn mavlink.MessageFunc) (mavlink.SubscriptionHandle, error)
	Unsubscribe(handle mavlink.SubscriptionHandle)
}

// Recorder is where matching message names go.
type Recorder interface {
	Record(name string)
}

type Config struct {
	Source    Source
	Recorder  Recorder
	Monitored []string
	QueueSize int
	Policy    Policy
}

type Ingestor struct {
	*Config

	monitored map[string]struct{}
	queue     chan string
	handle    mavlink.SubscriptionHandle
	dropped   uint64

	// guards started/stopped and the queue close
	mtx      *sync.RWMutex
	started  bool
	stopped  bool
	drainWG  *sync.WaitGroup
	stopOnce *sync.Once

	log *logrus.Entry
}

func New(cfg *Config) (*Ingestor, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	monitored := make(map[string]struct{}, len(cfg.Monitored))
	for _, name := range cfg.Monitored {
		monitored[name] = struct{}{}
	}

	return &Ingestor{
		Config:    cfg,
		monitored: monitored,
		queue:     make(chan string, cfg.QueueSize),
		mtx:       &sync.RWMutex{},
		drainWG:   &sync.WaitGroup{},
		stopOnce:  &sync.Once{},
		log:       logrus.WithField("pkg", "ingest"),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if cfg.Source == nil {
		return ErrMissingSource
	}

	if cfg.Recorder == nil {
		return ErrMissingRecorder
	}

	if len(cfg.Monitored) == 0 {
		return ErrMissingMonitored
	}

	if cfg.QueueSize <= 0 {
		return ErrInvalidQueueSize
	}

	return nil
}

// Start subscribes to every message on the source and begins draining.
func (i *Ingestor) Start() error {
	i.mtx.Lock()
	defer i.mtx.Unlock()

	if i.stopped {
		return ErrStopped
	}

	if i.started {
		return ErrAlreadyStarted
	}

	i.drainWG.Add(1)
	go i.drain()

	handle, err := i.Source.Subscribe("", i.handleMessage)
	if err != nil {
		i.stopped = true
		close(i.queue)
		i.drainWG.Wait()

		return errors.Wrap(err, "unable to subscribe to messages")
	}

	i.handle = handle
	i.started = true

	i.log.Debugf("subscribed (handle '%s', policy '%s', queue size %d)", handle, i.Policy, i.QueueSize)

	return nil
}

// Stop unsubscribes and waits for queued messages to be recorded. Once it
// returns the Recorder is not called again. Safe to call more than once.
func (i *Ingestor) Stop() {
	i.stopOnce.Do(func() {
		i.mtx.RLock()
		started, handle := i.started, i.handle
		i.mtx.RUnlock()

		if started {
			i.Source.Unsubscribe(handle)
		}

		i.mtx.Lock()
		if !i.stopped {
			i.stopped = true
			close(i.queue)
		}
		i.mtx.Unlock()

		i.drainWG.Wait()

		i.log.Debug("stopped")
	})
}

// Dropped returns how many monitored messages were discarded because the
// queue was full. Always zero under PolicyBlock.
func (i *Ingestor) Dropped() uint64 {
	return atomic.LoadUint64(&i.dropped)
}

// IsMonitored reports whether name is in the monitored set (exact,
// case-sensitive match).
func (i *Ingestor) IsMonitored(name string) bool {
	_, ok := i.monitored[name]
	return ok
}

func (i *Ingestor) handleMessage(msg *mavlink.Message) {
	if msg == nil || !i.IsMonitored(msg.Name) {
		return
	}

	i.mtx.RLock()
	defer i.mtx.RUnlock()

	if i.stopped {
		return
	}

	if i.Policy == PolicyDrop {
		select {
		case i.queue <- msg.Name:
		default:
			if n := atomic.AddUint64(&i.dropped, 1); n == 1 || n%1000 == 0 {
				i.log.Warnf("ingest queue full, %d message(s) dropped so far", n)
			}
		}

		return
	}

	i.queue <- msg.Name
}

func (i *Ingestor) drain() {
	defer i.drainWG.Done()

	for name := range i.queue {
		i.Recorder.Record(name)
	}
}
