package pubsub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// TopicRanking carries a message whenever the visible leaderboard may have changed.
const TopicRanking = "ranking"

// Broker a simple in-memory pub/sub system. Each topic retains its last
// message so late subscribers learn the current state.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan []byte // topic -> list of subscriber channels
	retained    map[string][]byte        // topic -> last published message
}

type Event struct {
	Stream string `json:"stream"`
	Data   string `json:"data"`
}

var (
	once   sync.Once
	broker *Broker
)

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan []byte),
		retained:    make(map[string][]byte),
	}
}

// GetBroker returns the singleton instance of the Broker.
func GetBroker() *Broker {
	once.Do(func() {
		broker = NewBroker()
	})
	return broker
}

// Subscribe subscribes to a topic. The retained message, if any, is delivered
// first.
func (b *Broker) Subscribe(topic string) (<-chan []byte, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []byte, 16)
	if last, ok := b.retained[topic]; ok {
		ch <- last
	}
	b.subscribers[topic] = append(b.subscribers[topic], ch)

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subscribers := b.subscribers[topic]
		for i, sub := range subscribers {
			if sub == ch {
				// Remove the channel from the slice
				b.subscribers[topic] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
		zap.S().Debugf("unsubscribed from topic %s", topic)
	}

	zap.S().Debugf("new subscription to topic %s", topic)
	return ch, unsubscribe
}

// Publish publishes a message to all subscribers of a topic and retains it.
func (b *Broker) Publish(topic string, msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.retained[topic] = msg

	// Broadcast to live subscribers (non-blocking).
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// A slow client misses this message; the next one supersedes it anyway.
		}
	}
}

// CloseTopic closes all subscriber channels and drops the retained message.
func (b *Broker) CloseTopic(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[topic]; ok {
		for _, ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
	delete(b.retained, topic)
	zap.S().Infof("closed pubsub topic %s", topic)
}

// Helper to format stream messages
func FormatMessage(stream string, data string) []byte {
	msg := Event{Stream: stream, Data: data}
	bytes, err := json.Marshal(msg)
	if err != nil {
		return []byte(`{"stream": "error", "data": "json format error"}`)
	}
	return bytes
}
