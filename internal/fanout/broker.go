package fanout

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"vibe-in-the-dark/internal/logger"
)

// Publisher delivers an event to everyone watching a room.
type Publisher interface {
	Publish(ctx context.Context, room string, e Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, room string, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, room string, e Event) error {
	return f(ctx, room, e)
}

// Multi publishes to each publisher in turn and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, room string, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, room, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const DefaultBuffer = 64

var ErrBrokerClosed = errors.New("fanout: broker closed")

// Broker is an in-process room pub/sub. Publishes to one room are delivered
// in order; a subscriber whose buffer is full is dropped and its channel closed.
type Broker struct {
	mu     sync.Mutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
	closed bool
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

type Subscription struct {
	room   string
	ch     chan Event
	broker *Broker
}

// Events is closed when the subscription ends, either by Close or because
// the subscriber fell behind.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Room() string {
	return s.room
}

func (s *Subscription) Close() {
	s.broker.remove(s)
}

func (b *Broker) Subscribe(room string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	sub := &Subscription{room: room, ch: make(chan Event, b.buffer), broker: b}
	subs, ok := b.rooms[room]
	if !ok {
		subs = make(map[*Subscription]struct{})
		b.rooms[room] = subs
	}
	subs[sub] = struct{}{}
	return sub, nil
}

func (b *Broker) Publish(_ context.Context, room string, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for sub := range b.rooms[room] {
		select {
		case sub.ch <- e:
		default:
			logger.Warn("dropping slow subscriber", zap.String("game_code", room), zap.String("event", string(e.Type())))
			b.removeLocked(sub)
		}
	}
	return nil
}

// Subscribers reports how many subscribers a room has.
func (b *Broker) Subscribers(room string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rooms[room])
}

// CloseRoom ends every subscription to room.
func (b *Broker) CloseRoom(room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.rooms[room] {
		b.removeLocked(sub)
	}
}

func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.rooms {
		for sub := range subs {
			b.removeLocked(sub)
		}
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sub)
}

func (b *Broker) removeLocked(sub *Subscription) {
	subs, ok := b.rooms[sub.room]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(b.rooms, sub.room)
	}
}
