// Package realtime keeps the latest soil snapshot per device and fans every
// change out to in-process listeners.
package realtime

import (
	"sync"

	"cropwise/models"

	"go.uber.org/zap"
)

// Subscriber receives snapshots for one topic. A nil value means the record
// is absent.
type Subscriber chan *models.SoilCondition

type Broker interface {
	Subscribe(topic string) Subscriber
	Unsubscribe(topic string, ch Subscriber)
	Publish(topic string, snapshot *models.SoilCondition)
	Subscribers(topic string) int
}

// MessageBroker delivers only the most recent value to each subscriber: a
// slow listener sees the newest snapshot, never a backlog.
type MessageBroker struct {
	subscribers map[string][]Subscriber // keys are topics
	mu          sync.RWMutex
	log         *zap.Logger
}

func NewMessageBroker(log *zap.Logger) *MessageBroker {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageBroker{
		subscribers: make(map[string][]Subscriber),
		log:         log,
	}
}

func (b *MessageBroker) Subscribe(topic string) Subscriber {
	ch := make(Subscriber, 1)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch from topic and closes it. Unknown channels are ignored.
func (b *MessageBroker) Unsubscribe(topic string, ch Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
	b.log.Debug("unsubscribed", zap.String("topic", topic))
}

func (b *MessageBroker) Publish(topic string, snapshot *models.SoilCondition) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subscribers[topic]
	if len(subs) == 0 {
		b.log.Debug("no subscribers", zap.String("topic", topic))
		return
	}

	for _, sub := range subs {
		var msg *models.SoilCondition
		if snapshot != nil {
			cp := *snapshot
			msg = &cp
		}
		select {
		case sub <- msg:
			continue
		default:
		}
		// replace the undelivered value with the newer one
		select {
		case <-sub:
		default:
		}
		select {
		case sub <- msg:
		default:
			b.log.Warn("dropped snapshot", zap.String("topic", topic))
		}
	}
}

func (b *MessageBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}
