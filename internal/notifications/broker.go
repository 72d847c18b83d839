// Package notifications fans change events out to live subscribers and
// manages the websocket connections that carry them.
package notifications

import (
	"context"
	"sync"

	"postboard/internal/models"
	"postboard/internal/observability"
)

// Topic names a stream of change events.
type Topic string

// Topics published by the mutations.
const (
	TopicPostAdded      Topic = "POST_ADDED"
	TopicPostUpdated    Topic = "POST_UPDATED"
	TopicPostDeleted    Topic = "POST_DELETED"
	TopicCommentAdded   Topic = "COMMENT_ADDED"
	TopicCommentUpdated Topic = "COMMENT_UPDATED"
	TopicCommentDeleted Topic = "COMMENT_DELETED"
)

const defaultSubscriberBuffer = 32

// Event is one change notification. Exactly one of Post or Comment is set,
// matching the topic.
type Event struct {
	Topic   Topic
	Post    *models.Post
	Comment *models.Comment
}

// Publisher is the write side of the broker used by the mutations.
type Publisher interface {
	Publish(ctx context.Context, ev Event) int
}

type subscription struct {
	ch chan Event
}

// Broker is an in-process topic registry. Delivery is at-most-once with no
// replay: subscribers see only events published after they attach, and an
// event is dropped for a subscriber whose buffer is full.
type Broker struct {
	mu     sync.RWMutex
	topics map[Topic]map[*subscription]struct{}
	buffer int
	closed bool
}

// NewBroker creates a Broker with per-subscriber buffers of the given size.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{
		topics: make(map[Topic]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe attaches to topic. The returned channel is closed when ctx ends
// or the broker shuts down.
func (b *Broker) Subscribe(ctx context.Context, topic Topic) <-chan Event {
	sub := &subscription{ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*subscription]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	observability.FeedSubscribers.WithLabelValues(string(topic)).Set(float64(len(subs)))
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(topic, sub)
	}()

	return sub.ch
}

func (b *Broker) unsubscribe(topic Topic, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
	observability.FeedSubscribers.WithLabelValues(string(topic)).Set(float64(len(subs)))
}

// Publish delivers ev to every current subscriber of ev.Topic without
// blocking and returns how many received it.
func (b *Broker) Publish(ctx context.Context, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	observability.FeedEventsPublished.WithLabelValues(string(ev.Topic)).Inc()

	delivered := 0
	for sub := range b.topics[ev.Topic] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			observability.FeedEventsDropped.WithLabelValues(string(ev.Topic)).Inc()
			observability.Logger.WarnContext(ctx, "subscriber buffer full, dropped event",
				"topic", string(ev.Topic))
		}
	}
	return delivered
}

// Subscribers returns the number of live subscribers on topic.
func (b *Broker) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Shutdown closes every subscription. Later subscriptions are closed immediately.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.topics {
		for sub := range subs {
			close(sub.ch)
		}
		observability.FeedSubscribers.WithLabelValues(string(topic)).Set(0)
	}
	b.topics = make(map[Topic]map[*subscription]struct{})
}
