// Package stats holds the per-message counters shared between the ingestor
// (writer) and the reporter/collector (readers).
//
// A single Registry is created per run and handed to every component that
// needs it; there is no package-level state.
package stats

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Entry is the state tracked for a single message name.
type Entry struct {
	Count      uint64
	LastSeenAt time.Time
}

// Snapshot is a point-in-time copy of every entry in a Registry. Names that
// were never recorded are absent, never zero-valued.
type Snapshot map[string]Entry

// Get returns the entry for name and whether it has been observed.
func (s Snapshot) Get(name string) (Entry, bool) {
	e, ok := s[name]
	return e, ok
}

// Total returns the sum of all counts in the snapshot.
func (s Snapshot) Total() uint64 {
	var total uint64

	for _, e := range s {
		total += e.Count
	}

	return total
}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . ISnapshotter
type ISnapshotter interface {
	Snapshot() Snapshot
}

type Registry struct {
	mtx     *sync.Mutex
	entries map[string]*Entry
	clock   clock.Clock
	log     *logrus.Entry
}

// NewRegistry returns an empty registry. A nil clock means wall clock.
func NewRegistry(clk clock.Clock) *Registry {
	if clk == nil {
		clk = clock.New()
	}

	return &Registry{
		mtx:     &sync.Mutex{},
		entries: make(map[string]*Entry),
		clock:   clk,
		log:     logrus.WithField("pkg", "stats"),
	}
}

// Record counts one observation of name and stamps it with the current time.
func (r *Registry) Record(name string) {
	now := r.clock.Now()

	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &Entry{}
		r.entries[name] = e

		r.log.Debugf("first '%s' observed", name)
	}

	e.Count++

	if now.After(e.LastSeenAt) {
		e.LastSeenAt = now
	}
}

// Snapshot returns a consistent copy of all entries.
func (r *Registry) Snapshot() Snapshot {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	snap := make(Snapshot, len(r.entries))

	for name, e := range r.entries {
		snap[name] = *e
	}

	return snap
}

// ElapsedSeconds returns whole seconds between start and now, floored. It is
// never negative.
func ElapsedSeconds(start, now time.Time) int64 {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		return 0
	}

	return int64(elapsed / time.Second)
}

// Rate returns the average messages per second over elapsedSeconds, or 0 when
// no full second has elapsed yet.
func Rate(count uint64, elapsedSeconds int64) float64 {
	if elapsedSeconds <= 0 {
		return 0.0
	}

	return float64(count) / float64(elapsedSeconds)
}
