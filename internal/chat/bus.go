// Package chat bridges the persisted message flow onto a realtime
// transport: a publish/subscribe bus fanning events out to attached
// websocket clients. Delivery is best-effort, at most once.
package chat

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

// Bus is the transport contract. Core publishes; the hub subscribes on
// behalf of connected clients.
type Bus interface {
	Publish(subject string, data interface{}) error
	Subscribe(subject string, handler func(data []byte)) (Unsubscribe, error)
	Close()
}

type Unsubscribe func()

// NatsBus fans events out across instances.
type NatsBus struct {
	conn *nats.Conn
}

func NewNatsBus(url string) (*NatsBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NatsBus{conn: conn}, nil
}

func (b *NatsBus) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.conn.Publish(subject, payload)
}

func (b *NatsBus) Subscribe(subject string, handler func(data []byte)) (Unsubscribe, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (b *NatsBus) Close() {
	b.conn.Close()
}

// MemoryBus is the single-process fallback used when NATS is disabled,
// and in tests.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[int]func(data []byte)
	next int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]func(data []byte))}
}

func (b *MemoryBus) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	b.mu.RLock()
	handlers := make([]func(data []byte), 0, len(b.subs[subject]))
	for _, h := range b.subs[subject] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	return nil
}

func (b *MemoryBus) Subscribe(subject string, handler func(data []byte)) (Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[subject] == nil {
		b.subs[subject] = make(map[int]func(data []byte))
	}
	id := b.next
	b.next++
	b.subs[subject][id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[subject], id)
	}, nil
}

func (b *MemoryBus) Close() {}
