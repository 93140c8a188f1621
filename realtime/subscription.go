package realtime

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"cropwise/models"
)

// Subscription is a live listener on one device's snapshot. It detaches when
// Close is called or when the context given to Subscribe is cancelled,
// whichever comes first.
type Subscription struct {
	deviceID string
	broker   Broker
	ch       Subscriber
	once     sync.Once
	stop     chan struct{}
	done     chan struct{}
	runner   atomic.Uint64 // goroutine that invokes the callback
}

func newSubscription(deviceID string, broker Broker) *Subscription {
	return &Subscription{
		deviceID: deviceID,
		broker:   broker,
		ch:       broker.Subscribe(deviceID),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Subscription) DeviceID() string { return s.deviceID }

// Done is closed once the listener has stopped invoking its callback.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close detaches the listener. Once it returns the callback is not running
// and will not be invoked again. It is safe to call more than once and from
// inside the callback, in which case it returns without waiting for that
// callback to finish.
func (s *Subscription) Close() {
	s.detach()
	if s.runner.Load() == goroutineID() {
		return
	}
	<-s.done
}

func (s *Subscription) detach() {
	s.once.Do(func() {
		close(s.stop)
		s.broker.Unsubscribe(s.deviceID, s.ch)
	})
}

func (s *Subscription) run(ctx context.Context, initial *models.SoilCondition, callback func(*models.SoilCondition)) {
	s.runner.Store(goroutineID())
	defer close(s.done)
	defer s.detach()

	if !s.deliver(initial, callback) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case snap, ok := <-s.ch:
			// a closed channel still hands out its buffered value
			if !ok || !s.deliver(snap, callback) {
				return
			}
		}
	}
}

// deliver invokes callback unless the subscription has been stopped.
func (s *Subscription) deliver(snap *models.SoilCondition, callback func(*models.SoilCondition)) bool {
	select {
	case <-s.stop:
		return false
	default:
	}
	callback(snap)
	return true
}

// goroutineID reads the calling goroutine's id from its stack header,
// "goroutine 42 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
