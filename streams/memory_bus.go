package streams

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
)

type memoryEntry struct {
	id      string
	payload []byte
}

type memoryPending struct {
	entry       memoryEntry
	deliveries  int64
	deliveredAt time.Time
}

type memoryGroup struct {
	cursor  int
	pending map[string]*memoryPending
	order   []string
}

type memoryTopic struct {
	entries []memoryEntry
	groups  map[string]*memoryGroup
}

// MemoryBus is an in-process bus with the same consumer group contract as RedisBus
type MemoryBus struct {
	mutex   sync.Mutex
	options RedisBusOptions
	topics  map[string]*memoryTopic
	notify  chan struct{}
	now     func() time.Time
}

func NewMemoryBus(options RedisBusOptions) *MemoryBus {
	return &MemoryBus{
		options: options,
		topics:  map[string]*memoryTopic{},
		notify:  make(chan struct{}),
		now:     time.Now,
	}
}

// SetClock replaces the clock used to measure pending idle time
func (b *MemoryBus) SetClock(now func() time.Time) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.now = now
}

func (b *MemoryBus) topic(name string) *memoryTopic {
	topic, ok := b.topics[name]
	if !ok {
		topic = &memoryTopic{groups: map[string]*memoryGroup{}}
		b.topics[name] = topic
	}
	return topic
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.publish(topic, payload), nil
}

func (b *MemoryBus) publish(name string, payload []byte) string {
	topic := b.topic(name)
	entry := memoryEntry{id: uuid.NewString(), payload: append([]byte(nil), payload...)}
	topic.entries = append(topic.entries, entry)
	if b.options.MaxLen > 0 && int64(len(topic.entries)) > b.options.MaxLen {
		trim := len(topic.entries) - int(b.options.MaxLen)
		topic.entries = topic.entries[trim:]
		for _, group := range topic.groups {
			group.cursor -= trim
			if group.cursor < 0 {
				group.cursor = 0
			}
		}
	}
	close(b.notify)
	b.notify = make(chan struct{})
	return entry.id
}

func (b *MemoryBus) Consume(ctx context.Context, topic string, group string, consumer string, count int64,
	block time.Duration) ([]interfaces.Message, error) {
	var deadline <-chan time.Time
	if block > 0 {
		timer := time.NewTimer(block)
		defer timer.Stop()
		deadline = timer.C
	}
	for {
		b.mutex.Lock()
		messages := b.read(topic, group, count)
		notify := b.notify
		b.mutex.Unlock()

		if len(messages) > 0 || deadline == nil {
			return messages, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, nil
		case <-notify:
		}
	}
}

func (b *MemoryBus) read(name string, groupName string, count int64) []interfaces.Message {
	if count <= 0 {
		count = 1
	}
	topic := b.topic(name)
	group, ok := topic.groups[groupName]
	if !ok {
		group = &memoryGroup{pending: map[string]*memoryPending{}}
		topic.groups[groupName] = group
	}
	now := b.now()

	var messages []interfaces.Message
	if b.options.ClaimIdle > 0 {
		for _, id := range append([]string(nil), group.order...) {
			if int64(len(messages)) >= count {
				return messages
			}
			pending := group.pending[id]
			if now.Sub(pending.deliveredAt) < b.options.ClaimIdle {
				continue
			}
			if b.options.MaxDeliveries > 0 && pending.deliveries >= b.options.MaxDeliveries {
				b.publish(DeadLetter(name), pending.entry.payload)
				group.ack(id)
				helpers.Logger.WithFields(log.Fields{"topic": name, "group": groupName, "id": id}).
					Warnln("Message moved to dead letter topic")
				continue
			}
			pending.deliveries++
			pending.deliveredAt = now
			messages = append(messages, pending.toMessage(name))
		}
		if len(messages) > 0 {
			return messages
		}
	}

	for group.cursor < len(topic.entries) && int64(len(messages)) < count {
		entry := topic.entries[group.cursor]
		group.cursor++
		pending := &memoryPending{entry: entry, deliveries: 1, deliveredAt: now}
		group.pending[entry.id] = pending
		group.order = append(group.order, entry.id)
		messages = append(messages, pending.toMessage(name))
	}
	return messages
}

func (b *MemoryBus) Ack(_ context.Context, topic string, group string, ids ...string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if state, ok := b.topic(topic).groups[group]; ok {
		for _, id := range ids {
			state.ack(id)
		}
	}
	return nil
}

// Pending returns the number of delivered but unacked messages of a group
func (b *MemoryBus) Pending(topic string, group string) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if state, ok := b.topic(topic).groups[group]; ok {
		return len(state.pending)
	}
	return 0
}

// Len returns the number of retained messages of a topic
func (b *MemoryBus) Len(topic string) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.topic(topic).entries)
}

func (b *MemoryBus) Close() error {
	return nil
}

func (g *memoryGroup) ack(id string) {
	if _, ok := g.pending[id]; !ok {
		return
	}
	delete(g.pending, id)
	for i, pendingID := range g.order {
		if pendingID == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (p *memoryPending) toMessage(topic string) interfaces.Message {
	return interfaces.Message{ID: p.entry.id, Topic: topic, Payload: p.entry.payload, Deliveries: p.deliveries}
}
