// Package prometheus exposes the stats registry as Prometheus metrics.
//
// Values are computed at scrape time from a registry snapshot so the
// exported numbers always agree with what the reporter renders.
package prometheus

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/stats"
)

const (
	MessagesTotal       = "mavmon_messages_total"
	MessageRateHz       = "mavmon_message_rate_hz"
	MessageLastSeenSecs = "mavmon_message_last_seen_seconds"
	IngestDroppedTotal  = "mavmon_ingest_dropped_total"

	messageLabel = "message"
)

var (
	ErrMissingSnapshotter = errors.New("Snapshotter cannot be nil")
	ErrMissingMonitored   = errors.New("Monitored cannot be empty")
	ErrMissingStartedAt   = errors.New("StartedAt cannot be zero")
)

type Config struct {
	Snapshotter stats.ISnapshotter
	Monitored   []string
	StartedAt   time.Time

	// Optional; when set, IngestDroppedTotal is exported
	Dropped func() uint64

	// Optional; defaults to the wall clock
	Clock clock.Clock
}

// Collector implements prometheus.Collector over a stats snapshot.
type Collector struct {
	*Config

	messagesDesc *prometheus.Desc
	rateDesc     *prometheus.Desc
	lastSeenDesc *prometheus.Desc
	droppedDesc  *prometheus.Desc

	log *logrus.Entry
}

func New(cfg *Config) (*Collector, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Collector{
		Config: cfg,
		messagesDesc: prometheus.NewDesc(
			MessagesTotal,
			"Total number of monitored MAVLink messages received",
			[]string{messageLabel}, nil,
		),
		rateDesc: prometheus.NewDesc(
			MessageRateHz,
			"Average receive rate since the run started",
			[]string{messageLabel}, nil,
		),
		lastSeenDesc: prometheus.NewDesc(
			MessageLastSeenSecs,
			"Seconds since the message was last received",
			[]string{messageLabel}, nil,
		),
		droppedDesc: prometheus.NewDesc(
			IngestDroppedTotal,
			"Number of monitored messages dropped because the ingest queue was full",
			nil, nil,
		),
		log: logrus.WithField("pkg", "prometheus"),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if cfg.Snapshotter == nil {
		return ErrMissingSnapshotter
	}

	if len(cfg.Monitored) == 0 {
		return ErrMissingMonitored
	}

	if cfg.StartedAt.IsZero() {
		return ErrMissingStartedAt
	}

	return nil
}

// NewRegistry returns a dedicated prometheus registry with c registered on it.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(c); err != nil {
		return nil, errors.Wrap(err, "unable to register collector")
	}

	return reg, nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messagesDesc
	ch <- c.rateDesc
	ch <- c.lastSeenDesc

	if c.Dropped != nil {
		ch <- c.droppedDesc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	now := c.Clock.Now()
	elapsed := stats.ElapsedSeconds(c.StartedAt, now)
	snap := c.Snapshotter.Snapshot()

	for _, name := range c.Monitored {
		entry, seen := snap.Get(name)

		ch <- prometheus.MustNewConstMetric(c.messagesDesc, prometheus.CounterValue, float64(entry.Count), name)
		ch <- prometheus.MustNewConstMetric(c.rateDesc, prometheus.GaugeValue, stats.Rate(entry.Count, elapsed), name)

		if seen {
			ch <- prometheus.MustNewConstMetric(c.lastSeenDesc, prometheus.GaugeValue, now.Sub(entry.LastSeenAt).Seconds(), name)
		}
	}

	if c.Dropped != nil {
		ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(c.Dropped()))
	}
}
