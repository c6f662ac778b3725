// Package mavlink is the transport for mavmon: it opens a MAVLink endpoint
// with gomavlib, discovers remote systems from their HEARTBEATs and fans
// decoded messages out to name-filtered subscriptions.
package mavlink

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	BackendName = "mavlink"

	// GroundStationSystemID is the system ID used for frames we emit. Frames
	// carrying this ID are never treated as a counterpart.
	GroundStationSystemID = 245
)

// IConn is the subset of a MAVLink link that the rest of mavmon depends on.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . IConn
type IConn interface {
	// Counterparts returns every remote system discovered so far, in the
	// order they were first seen. Non-blocking.
	Counterparts() []Counterpart

	// FramesSeen returns how many frames have been decoded on the link.
	FramesSeen() uint64

	// Subscribe registers fn for every message whose name equals filter, or
	// for all messages when filter is empty. Deliveries are serialized.
	Subscribe(filter string, fn MessageFunc) (SubscriptionHandle, error)

	// Unsubscribe removes a subscription. Once it returns, fn is not called
	// again. Unknown handles are ignored.
	Unsubscribe(handle SubscriptionHandle)

	Close() error
}

// Counterpart is a remote system that announced itself with a HEARTBEAT.
type Counterpart struct {
	SystemID    byte
	ComponentID byte
	FirstSeenAt time.Time
}

// Message is what subscribers receive for every decoded frame.
type Message struct {
	Name        string
	SystemID    byte
	ComponentID byte
	ReceivedAt  time.Time
}

type MessageFunc func(msg *Message)

type SubscriptionHandle string

type subscription struct {
	filter string
	fn     MessageFunc
}

type Link struct {
	Descriptor *Descriptor

	node *gomavlib.Node

	counterpartsMtx *sync.RWMutex
	counterparts    []Counterpart

	subscriptionsMtx *sync.RWMutex
	subscriptions    map[SubscriptionHandle]*subscription

	framesSeen uint64

	closeOnce *sync.Once
	doneCh    chan struct{}
	log       *logrus.Entry
}

// Open parses descriptor, opens the endpoint and starts reading frames.
func Open(descriptor string) (*Link, error) {
	d, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse connection URL")
	}

	endpoint, err := d.EndpointConf()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build endpoint config")
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:   []gomavlib.EndpointConf{endpoint},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: GroundStationSystemID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open '%s'", d)
	}

	l := newLink(d)
	l.node = node

	go l.run()

	l.log.Debugf("opened %s", d)

	return l, nil
}

func newLink(d *Descriptor) *Link {
	return &Link{
		Descriptor:       d,
		counterpartsMtx:  &sync.RWMutex{},
		counterparts:     make([]Counterpart, 0),
		subscriptionsMtx: &sync.RWMutex{},
		subscriptions:    make(map[SubscriptionHandle]*subscription),
		closeOnce:        &sync.Once{},
		doneCh:           make(chan struct{}),
		log:              logrus.WithField("backend", BackendName),
	}
}

func (l *Link) run() {
	defer close(l.doneCh)

	for evt := range l.node.Events() {
		switch e := evt.(type) {
		case *gomavlib.EventFrame:
			l.handleFrame(e.SystemID(), e.ComponentID(), e.Message(), time.Now())
		case *gomavlib.EventChannelOpen:
			l.log.Debugf("channel open: %s", e.Channel)
		case *gomavlib.EventChannelClose:
			l.log.Debugf("channel closed: %s", e.Channel)
		case *gomavlib.EventParseError:
			l.log.Debugf("unable to parse frame: %s", e.Error)
		}
	}
}

func (l *Link) handleFrame(systemID, componentID byte, msg message.Message, receivedAt time.Time) {
	atomic.AddUint64(&l.framesSeen, 1)

	if _, ok := msg.(*common.MessageHeartbeat); ok && systemID != GroundStationSystemID {
		l.discover(systemID, componentID, receivedAt)
	}

	m := &Message{
		Name:        MessageName(msg),
		SystemID:    systemID,
		ComponentID: componentID,
		ReceivedAt:  receivedAt,
	}

	l.subscriptionsMtx.RLock()
	defer l.subscriptionsMtx.RUnlock()

	for _, sub := range l.subscriptions {
		if sub.filter == "" || sub.filter == m.Name {
			sub.fn(m)
		}
	}
}

func (l *Link) discover(systemID, componentID byte, seenAt time.Time) {
	l.counterpartsMtx.Lock()
	defer l.counterpartsMtx.Unlock()

	for _, c := range l.counterparts {
		if c.SystemID == systemID {
			return
		}
	}

	l.counterparts = append(l.counterparts, Counterpart{
		SystemID:    systemID,
		ComponentID: componentID,
		FirstSeenAt: seenAt,
	})

	l.log.Debugf("discovered system %d (component %d)", systemID, componentID)
}

func (l *Link) Counterparts() []Counterpart {
	l.counterpartsMtx.RLock()
	defer l.counterpartsMtx.RUnlock()

	out := make([]Counterpart, len(l.counterparts))
	copy(out, l.counterparts)

	return out
}

func (l *Link) FramesSeen() uint64 {
	return atomic.LoadUint64(&l.framesSeen)
}

func (l *Link) Subscribe(filter string, fn MessageFunc) (SubscriptionHandle, error) {
	if fn == nil {
		return "", errors.New("message func cannot be nil")
	}

	handle := SubscriptionHandle(uuid.New().String())

	l.subscriptionsMtx.Lock()
	defer l.subscriptionsMtx.Unlock()

	l.subscriptions[handle] = &subscription{
		filter: filter,
		fn:     fn,
	}

	l.log.Debugf("subscription '%s' added (filter '%s')", handle, filter)

	return handle, nil
}

func (l *Link) Unsubscribe(handle SubscriptionHandle) {
	l.subscriptionsMtx.Lock()
	defer l.subscriptionsMtx.Unlock()

	if _, ok := l.subscriptions[handle]; !ok {
		return
	}

	delete(l.subscriptions, handle)

	l.log.Debugf("subscription '%s' removed", handle)
}

// Close shuts the node down and waits for the event loop to exit. Safe to call
// more than once.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		if l.node == nil {
			close(l.doneCh)
			return
		}

		l.node.Close()
		<-l.doneCh
	})

	return nil
}
