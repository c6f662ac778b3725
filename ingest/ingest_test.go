package ingest

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/streamdal/mavmon/backends/mavlink"
	"github.com/streamdal/mavmon/backends/mavlink/mavlinkfakes"
	"github.com/streamdal/mavmon/stats"
)

// gatedRecorder blocks every Record until the gate is closed
type gatedRecorder struct {
	gate     chan struct{}
	recorded int64
}

func (g *gatedRecorder) Record(string) {
	<-g.gate
	atomic.AddInt64(&g.recorded, 1)
}

func (g *gatedRecorder) count() int64 {
	return atomic.LoadInt64(&g.recorded)
}

var _ = Describe("Ingestor", func() {
	var (
		source   *mavlinkfakes.FakeIConn
		registry *stats.Registry
		deliver  mavlink.MessageFunc
		cfg      *Config
	)

	send := func(name string) {
		deliver(&mavlink.Message{Name: name, SystemID: 1, ComponentID: 1, ReceivedAt: time.Now()})
	}

	BeforeEach(func() {
		source = &mavlinkfakes.FakeIConn{}
		source.SubscribeCalls(func(filter string, fn mavlink.MessageFunc) (mavlink.SubscriptionHandle, error) {
			deliver = fn
			return "handle-1", nil
		})

		registry = stats.NewRegistry(nil)

		cfg = &Config{
			Source:    source,
			Recorder:  registry,
			Monitored: []string{"OPTICAL_FLOW", "OPTICAL_FLOW_RAD", "DISTANCE_SENSOR", "HEARTBEAT"},
			QueueSize: 16,
			Policy:    PolicyBlock,
		}
	})

	Context("New", func() {
		It("validates config", func() {
			_, err := New(nil)
			Expect(err).To(HaveOccurred())

			cfg.Source = nil
			_, err = New(cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(ErrMissingSource.Error()))
		})

		It("requires a recorder", func() {
			cfg.Recorder = nil
			_, err := New(cfg)
			Expect(err.Error()).To(ContainSubstring(ErrMissingRecorder.Error()))
		})

		It("requires a monitored set", func() {
			cfg.Monitored = nil
			_, err := New(cfg)
			Expect(err.Error()).To(ContainSubstring(ErrMissingMonitored.Error()))
		})

		It("requires a positive queue size", func() {
			cfg.QueueSize = 0
			_, err := New(cfg)
			Expect(err.Error()).To(ContainSubstring(ErrInvalidQueueSize.Error()))
		})
	})

	Context("IsMonitored", func() {
		It("matches exactly and case-sensitively", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			Expect(i.IsMonitored("HEARTBEAT")).To(BeTrue())
			Expect(i.IsMonitored("heartbeat")).To(BeFalse())
			Expect(i.IsMonitored("HEARTBEAT ")).To(BeFalse())
			Expect(i.IsMonitored("OPTICAL")).To(BeFalse())
			Expect(i.IsMonitored("")).To(BeFalse())
		})
	})

	Context("Start", func() {
		It("subscribes to every message", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())
			defer i.Stop()

			Expect(source.SubscribeCallCount()).To(Equal(1))
			filter, fn := source.SubscribeArgsForCall(0)
			Expect(filter).To(BeEmpty())
			Expect(fn).ToNot(BeNil())
		})

		It("refuses to start twice", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())
			defer i.Stop()

			Expect(i.Start()).To(Equal(ErrAlreadyStarted))
		})

		It("refuses to start after Stop", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			i.Stop()

			Expect(i.Start()).To(Equal(ErrStopped))
			Expect(source.SubscribeCallCount()).To(Equal(0))
		})

		It("returns subscribe errors", func() {
			source.SubscribeCalls(nil)
			source.SubscribeReturns("", errors.New("boom"))

			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())

			err = i.Start()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("boom"))

			// Stop after a failed start is still safe
			i.Stop()
			Expect(source.UnsubscribeCallCount()).To(Equal(0))
		})
	})

	Context("handleMessage", func() {
		It("records monitored messages", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			for n := 0; n < 5; n++ {
				send("HEARTBEAT")
			}
			for n := 0; n < 3; n++ {
				send("OPTICAL_FLOW")
			}

			i.Stop()

			snap := registry.Snapshot()
			Expect(snap).To(HaveLen(2))
			Expect(snap["HEARTBEAT"].Count).To(Equal(uint64(5)))
			Expect(snap["OPTICAL_FLOW"].Count).To(Equal(uint64(3)))
		})

		It("ignores everything outside the monitored set", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			for n := 0; n < 1000; n++ {
				send("X")
			}
			send("heartbeat")
			send("ATTITUDE")
			deliver(nil)

			i.Stop()

			Expect(registry.Snapshot()).To(BeEmpty())
			Expect(i.Dropped()).To(BeZero())
		})

		It("does not record after Stop", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			send("HEARTBEAT")
			i.Stop()

			Expect(source.UnsubscribeCallCount()).To(Equal(1))
			Expect(source.UnsubscribeArgsForCall(0)).To(Equal(mavlink.SubscriptionHandle("handle-1")))

			// a late delivery racing with Unsubscribe
			send("HEARTBEAT")
			send("DISTANCE_SENSOR")

			snap := registry.Snapshot()
			Expect(snap).To(HaveLen(1))
			Expect(snap["HEARTBEAT"].Count).To(Equal(uint64(1)))
		})

		It("Stop is idempotent", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			i.Stop()
			i.Stop()
			i.Stop()

			Expect(source.UnsubscribeCallCount()).To(Equal(1))
		})
	})

	Context("backpressure", func() {
		It("drops and counts when the queue is full under PolicyDrop", func() {
			recorder := &gatedRecorder{gate: make(chan struct{})}

			cfg.Recorder = recorder
			cfg.QueueSize = 4
			cfg.Policy = PolicyDrop

			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			// drain holds one in hand, queue holds four
			for n := 0; n < 20; n++ {
				send("HEARTBEAT")
			}

			Expect(i.Dropped()).To(BeNumerically(">=", uint64(15)))
			Expect(i.Dropped()).To(BeNumerically("<=", uint64(16)))

			close(recorder.gate)
			i.Stop()

			Expect(uint64(recorder.count()) + i.Dropped()).To(Equal(uint64(20)))
		})

		It("waits for space under PolicyBlock without losing anything", func() {
			recorder := &gatedRecorder{gate: make(chan struct{})}

			cfg.Recorder = recorder
			cfg.QueueSize = 2

			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			done := make(chan struct{})
			go func() {
				defer close(done)
				for n := 0; n < 10; n++ {
					send("DISTANCE_SENSOR")
				}
			}()

			Consistently(done, 50*time.Millisecond).ShouldNot(BeClosed())

			close(recorder.gate)
			Eventually(done).Should(BeClosed())

			i.Stop()

			Expect(recorder.count()).To(Equal(int64(10)))
			Expect(i.Dropped()).To(BeZero())
		})

		It("handles concurrent deliveries", func() {
			i, err := New(cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(i.Start()).To(Succeed())

			wg := &sync.WaitGroup{}
			for w := 0; w < 4; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for n := 0; n < 250; n++ {
						send("OPTICAL_FLOW_RAD")
						send("X")
					}
				}()
			}
			wg.Wait()

			i.Stop()

			Expect(registry.Snapshot()["OPTICAL_FLOW_RAD"].Count).To(Equal(uint64(1000)))
		})
	})

	Context("ParsePolicy", func() {
		It("parses known policies", func() {
			p, err := ParsePolicy("block")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal(PolicyBlock))

			p, err = ParsePolicy("drop")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal(PolicyDrop))
			Expect(p.String()).To(Equal("drop"))

			p, err = ParsePolicy("")
			Expect(err).ToNot(HaveOccurred())
			Expect(p).To(Equal(PolicyBlock))
		})

		It("rejects unknown policies", func() {
			_, err := ParsePolicy("Drop")
			Expect(err).To(HaveOccurred())
		})
	})
})
