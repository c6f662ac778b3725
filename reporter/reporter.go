// Package reporter periodically renders the per-message rate table.
package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/relistan/go-director"
	"github.com/sirupsen/logrus"

	"github.com/streamdal/mavmon/stats"
)

const (
	DefaultInterval = time.Second

	ClearScreen = "\033[2J\033[H"

	Title       = "Sensor Message Rate Monitor"
	NeverSeen   = "Never"
	EmptyNotice = "No monitored messages received yet."
)

var (
	ErrMissingSnapshotter = errors.New("Snapshotter cannot be nil")
	ErrMissingMonitored   = errors.New("Monitored cannot be empty")
	ErrMissingStartedAt   = errors.New("StartedAt cannot be zero")
	ErrMissingOut         = errors.New("Out cannot be nil")
	ErrInvalidInterval    = errors.New("Interval must be greater than 0")
)

type Config struct {
	Snapshotter stats.ISnapshotter
	Monitored   []string
	StartedAt   time.Time
	Interval    time.Duration
	Out         io.Writer

	// ClearScreen emits the ANSI clear sequence before every frame
	ClearScreen bool

	// Optional; defaults to the wall clock
	Clock clock.Clock
}

type Reporter struct {
	*Config

	log *logrus.Entry
}

func New(cfg *Config) (*Reporter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to validate config")
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Reporter{
		Config: cfg,
		log:    logrus.WithField("pkg", "reporter"),
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

	if cfg.Out == nil {
		return ErrMissingOut
	}

	if cfg.Interval <= 0 {
		return ErrInvalidInterval
	}

	return nil
}

// Run renders a frame every Interval until ctx is cancelled. Cancellation is
// a normal exit and returns nil; only a failed write to Out is an error.
func (r *Reporter) Run(ctx context.Context) error {
	if _, err := io.WriteString(r.Out, "\nMonitoring sensor messages. Press Ctrl+C to exit...\n\n"); err != nil {
		return errors.Wrap(err, "unable to write banner")
	}

	looper := director.NewTimedLooper(director.FOREVER, r.Interval, make(chan error, 1))

	stopCh := make(chan struct{})
	defer close(stopCh)

	go func() {
		select {
		case <-ctx.Done():
			looper.Quit()
		case <-stopCh:
		}
	}()

	r.log.Debugf("reporting every %s", r.Interval)

	looper.Loop(func() error {
		return r.tick()
	})

	if err := looper.Wait(); err != nil {
		return errors.Wrap(err, "reporter loop failed")
	}

	r.log.Debug("reporter exiting")

	return nil
}

func (r *Reporter) tick() error {
	now := r.Clock.Now()
	elapsed := stats.ElapsedSeconds(r.StartedAt, now)

	frame := Render(r.Snapshotter.Snapshot(), r.Monitored, elapsed, now)

	if r.ClearScreen {
		frame = ClearScreen + frame
	}

	if _, err := io.WriteString(r.Out, frame); err != nil {
		return errors.Wrap(err, "unable to write frame")
	}

	return nil
}

// Render formats one frame of the rate table. Rows follow the order of
// monitored regardless of activity.
func Render(snap stats.Snapshot, monitored []string, elapsedSeconds int64, now time.Time) string {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%s\n", Title)
	fmt.Fprintf(sb, "Runtime: %3d seconds\n", elapsedSeconds)

	table := tablewriter.NewWriter(sb)
	table.SetHeader([]string{"Message Name", "Total", "Rate (Hz)", "Last Seen"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	for _, name := range monitored {
		var count uint64
		lastSeen := NeverSeen

		if entry, ok := snap.Get(name); ok {
			count = entry.Count
			lastSeen = FormatLastSeen(now.Sub(entry.LastSeenAt))
		}

		table.Append([]string{
			name,
			fmt.Sprintf("%d", count),
			fmt.Sprintf("%.2f", stats.Rate(count, elapsedSeconds)),
			lastSeen,
		})
	}

	table.Render()

	if len(snap) == 0 {
		fmt.Fprintf(sb, "\n%s\n", EmptyNotice)
		fmt.Fprintf(sb, "  Waiting for: %s\n", strings.Join(monitored, ", "))
	}

	return sb.String()
}

// FormatLastSeen renders a recency as "N ms ago" below one second and
// "N s ago" (whole seconds, floored) from one second on.
func FormatLastSeen(since time.Duration) string {
	ms := since.Milliseconds()
	if ms < 0 {
		ms = 0
	}

	if ms < 1000 {
		return fmt.Sprintf("%d ms ago", ms)
	}

	return fmt.Sprintf("%d s ago", ms/1000)
}
