// Package monitor wires the link, stats registry, ingestor, reporter and the
// optional metrics API together for a single run.
package monitor

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/streamdal/mavmon/api"
	"github.com/streamdal/mavmon/backends/mavlink"
	"github.com/streamdal/mavmon/bootstrap"
	"github.com/streamdal/mavmon/ingest"
	"github.com/streamdal/mavmon/options"
	"github.com/streamdal/mavmon/printer"
	"github.com/streamdal/mavmon/prometheus"
	"github.com/streamdal/mavmon/reporter"
	"github.com/streamdal/mavmon/stats"
)

const ShutdownTimeout = 5 * time.Second

var (
	ErrMissingOptions     = errors.New("Options cannot be nil")
	ErrMissingShutdownCtx = errors.New("ServiceShutdownCtx cannot be nil")
)

type Config struct {
	Options            *options.Options
	ServiceShutdownCtx context.Context

	// Optional; default to the real link, stdout and the wall clock
	Opener  bootstrap.Opener
	Printer printer.IPrinter
	Out     io.Writer
	Clock   clock.Clock
}

type Monitor struct {
	*Config

	log *logrus.Entry
}

func New(cfg *Config) (*Monitor, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	if cfg.Opener == nil {
		cfg.Opener = bootstrap.OpenMAVLink
	}

	if cfg.Printer == nil {
		cfg.Printer = printer.New()
	}

	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Monitor{
		Config: cfg,
		log:    logrus.WithField("pkg", "monitor"),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if cfg.Options == nil {
		return ErrMissingOptions
	}

	if cfg.ServiceShutdownCtx == nil {
		return ErrMissingShutdownCtx
	}

	if _, err := ingest.ParsePolicy(cfg.Options.Backpressure); err != nil {
		return err
	}

	return nil
}

// Run connects, waits for a counterpart and then monitors until
// ServiceShutdownCtx is cancelled. Cancellation is a clean exit. A failure to
// close the link is appended to whatever Run returns.
func (m *Monitor) Run() (err error) {
	ctx := m.ServiceShutdownCtx
	opts := m.Options

	b, err := bootstrap.New(&bootstrap.Config{
		Opener:       m.Opener,
		Printer:      m.Printer,
		Timeout:      opts.DiscoveryTimeout,
		GracePeriod:  opts.GracePeriod,
		PollInterval: bootstrap.DefaultPollInterval,
	})
	if err != nil {
		return errors.Wrap(err, "unable to create bootstrapper")
	}

	conn, err := b.Connect(opts.ConnectionURL)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = multierr.Append(err, errors.Wrap(closeErr, "unable to close connection"))
		}
	}()

	if _, err := b.AwaitCounterpart(ctx, conn); err != nil {
		if ctx.Err() != nil {
			m.log.Debug("shutdown requested during discovery")
			return nil
		}

		return err
	}

	registry := stats.NewRegistry(m.Clock)
	startedAt := m.Clock.Now()

	ing, err := m.startIngestor(conn, registry)
	if err != nil {
		return err
	}

	defer ing.Stop()

	rep, err := reporter.New(&reporter.Config{
		Snapshotter: registry,
		Monitored:   opts.Messages,
		StartedAt:   startedAt,
		Interval:    opts.ReportInterval,
		Out:         m.Out,
		ClearScreen: !opts.NoClear,
		Clock:       m.Clock,
	})
	if err != nil {
		return errors.Wrap(err, "unable to create reporter")
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.MetricsAddress != "" {
		srv, err := m.startAPI(registry, ing, startedAt)
		if err != nil {
			return err
		}

		g.Go(func() error {
			<-gctx.Done()
			return shutdownAPI(srv)
		})
	}

	g.Go(func() error {
		return rep.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "monitor exited with error")
	}

	m.log.Debug("monitor exiting")

	return nil
}

func (m *Monitor) startIngestor(conn mavlink.IConn, registry *stats.Registry) (*ingest.Ingestor, error) {
	policy, err := ingest.ParsePolicy(m.Options.Backpressure)
	if err != nil {
		return nil, err
	}

	ing, err := ingest.New(&ingest.Config{
		Source:    conn,
		Recorder:  registry,
		Monitored: m.Options.Messages,
		QueueSize: m.Options.QueueSize,
		Policy:    policy,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create ingestor")
	}

	if err := ing.Start(); err != nil {
		return nil, errors.Wrap(err, "unable to start ingestor")
	}

	return ing, nil
}

func (m *Monitor) startAPI(registry *stats.Registry, ing *ingest.Ingestor, startedAt time.Time) (*http.Server, error) {
	collector, err := prometheus.New(&prometheus.Config{
		Snapshotter: registry,
		Monitored:   m.Options.Messages,
		StartedAt:   startedAt,
		Dropped:     ing.Dropped,
		Clock:       m.Clock,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create metrics collector")
	}

	promRegistry, err := prometheus.NewRegistry(collector)
	if err != nil {
		return nil, err
	}

	srv, err := api.Start(&api.Config{
		ListenAddress: m.Options.MetricsAddress,
		Version:       options.VERSION,
		Gatherer:      promRegistry,
		Snapshotter:   registry,
		Monitored:     m.Options.Messages,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to start metrics API")
	}

	m.Printer.Print("Serving metrics on http://" + srv.Addr + "/metrics")

	return srv, nil
}

func shutdownAPI(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "unable to shutdown metrics API")
	}

	return nil
}
