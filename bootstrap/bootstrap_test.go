package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/streamdal/mavmon/backends/mavlink"
	"github.com/streamdal/mavmon/backends/mavlink/mavlinkfakes"
	"github.com/streamdal/mavmon/printer"
)

var _ = Describe("Bootstrapper", func() {
	var (
		b         *Bootstrapper
		conn      *mavlinkfakes.FakeIConn
		out       *bytes.Buffer
		opened    []string
		openErr   error
		cfg       *Config
		autopilot = mavlink.Counterpart{SystemID: 1, ComponentID: 1}
	)

	BeforeEach(func() {
		conn = &mavlinkfakes.FakeIConn{}
		out = &bytes.Buffer{}
		opened = nil
		openErr = nil

		cfg = &Config{
			Opener: func(descriptor string) (mavlink.IConn, error) {
				opened = append(opened, descriptor)
				if openErr != nil {
					return nil, openErr
				}
				return conn, nil
			},
			Printer:      printer.NewWithWriter(out),
			Timeout:      50 * time.Millisecond,
			GracePeriod:  30 * time.Millisecond,
			PollInterval: 5 * time.Millisecond,
		}

		var err error
		b, err = New(cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	Context("New", func() {
		It("validates the config", func() {
			_, err := New(nil)
			Expect(err).To(HaveOccurred())

			_, err = New(&Config{Printer: printer.New(), PollInterval: time.Millisecond})
			Expect(errors.Is(err, ErrMissingOpener)).To(BeTrue())

			_, err = New(&Config{Opener: cfg.Opener, PollInterval: time.Millisecond})
			Expect(errors.Is(err, ErrMissingPrinter)).To(BeTrue())

			_, err = New(&Config{Opener: cfg.Opener, Printer: printer.New()})
			Expect(errors.Is(err, ErrInvalidPollInterval)).To(BeTrue())

			_, err = New(&Config{Opener: cfg.Opener, Printer: printer.New(), PollInterval: time.Millisecond, Timeout: -1})
			Expect(errors.Is(err, ErrInvalidTimeout)).To(BeTrue())

			_, err = New(&Config{Opener: cfg.Opener, Printer: printer.New(), PollInterval: time.Millisecond, GracePeriod: -1})
			Expect(errors.Is(err, ErrInvalidGracePeriod)).To(BeTrue())
		})

		It("starts in the connecting state", func() {
			Expect(b.State()).To(Equal(StateConnecting))
			Expect(b.State().String()).To(Equal("connecting"))
		})
	})

	Context("Connect", func() {
		It("returns the opened connection", func() {
			got, err := b.Connect("udpin://0.0.0.0:14540")
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(conn))
			Expect(opened).To(Equal([]string{"udpin://0.0.0.0:14540"}))
		})

		It("wraps opener failures in a ConnectionError", func() {
			openErr = errors.New("device not found")

			got, err := b.Connect("serial:///dev/ttyUSB9:57600")
			Expect(got).To(BeNil())
			Expect(err).To(HaveOccurred())

			var connErr *ConnectionError
			Expect(errors.As(err, &connErr)).To(BeTrue())
			Expect(connErr.Descriptor).To(Equal("serial:///dev/ttyUSB9:57600"))
			Expect(errors.Is(err, openErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("device not found"))
		})

		It("treats a nil connection as a failure", func() {
			cfg.Opener = func(string) (mavlink.IConn, error) { return nil, nil }

			_, err := b.Connect("udpin://:14540")
			Expect(errors.Is(err, ErrMissingConn)).To(BeTrue())
		})

		It("surfaces descriptor errors from the real opener", func() {
			cfg.Opener = OpenMAVLink

			_, err := b.Connect("bogus://nowhere")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, mavlink.ErrUnknownScheme)).To(BeTrue())
		})
	})

	Context("AwaitCounterpart", func() {
		It("requires a connection", func() {
			_, err := b.AwaitCounterpart(context.Background(), nil)
			Expect(err).To(Equal(ErrMissingConn))
		})

		It("returns immediately when a counterpart is already known", func() {
			conn.CounterpartsReturns([]mavlink.Counterpart{autopilot})

			got, err := b.AwaitCounterpart(context.Background(), conn)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(&autopilot))
			Expect(b.State()).To(Equal(StateConnected))
			Expect(conn.CounterpartsCallCount()).To(Equal(1))
			Expect(out.String()).To(ContainSubstring("System connected!"))
		})

		It("keeps polling until a counterpart appears", func() {
			conn.CounterpartsReturnsOnCall(0, nil)
			conn.CounterpartsReturnsOnCall(1, nil)
			conn.CounterpartsReturnsOnCall(2, []mavlink.Counterpart{autopilot})

			got, err := b.AwaitCounterpart(context.Background(), conn)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(&autopilot))
			Expect(conn.CounterpartsCallCount()).To(Equal(3))
			Expect(out.String()).ToNot(ContainSubstring("No autopilot system detected"))
		})

		It("catches a counterpart that arrives during the grace period", func() {
			var calls int32
			conn.CounterpartsCalls(func() []mavlink.Counterpart {
				// the first window is Timeout/PollInterval+1 checks
				if atomic.AddInt32(&calls, 1) > 12 {
					return []mavlink.Counterpart{autopilot}
				}
				return nil
			})

			got, err := b.AwaitCounterpart(context.Background(), conn)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(&autopilot))
			Expect(b.State()).To(Equal(StateConnected))
			Expect(out.String()).To(ContainSubstring("No autopilot system detected"))
			Expect(out.String()).To(ContainSubstring("Continuing to listen"))
		})

		It("falls back to listen-only when frames are flowing", func() {
			conn.FramesSeenReturns(17)

			got, err := b.AwaitCounterpart(context.Background(), conn)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(BeNil())
			Expect(b.State()).To(Equal(StateListenOnly))
			Expect(out.String()).To(ContainSubstring("Listening for MAVLink messages..."))
		})

		It("fails when nothing was ever seen", func() {
			start := time.Now()

			got, err := b.AwaitCounterpart(context.Background(), conn)
			Expect(got).To(BeNil())
			Expect(err).To(Equal(ErrNoCounterpart))
			Expect(err.Error()).To(ContainSubstring("no system detected"))
			Expect(b.State()).To(Equal(StateConnecting))
			Expect(time.Since(start)).To(BeNumerically(">=", cfg.Timeout+cfg.GracePeriod))
			Expect(conn.FramesSeenCallCount()).To(Equal(1))
		})

		It("aborts when the context is cancelled", func() {
			cfg.Timeout = time.Hour

			ctx, cancel := context.WithCancel(context.Background())

			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()

			got, err := b.AwaitCounterpart(ctx, conn)
			Expect(got).To(BeNil())
			Expect(err).To(Equal(context.Canceled))
			Expect(b.State()).To(Equal(StateConnecting))
		})
	})
})
