package realtime

import (
	"context"
	"sync"
)

// MemoryBroker брокер в памяти одного процесса
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]chan []byte
	closed bool
}

// NewMemoryBroker создает брокер в памяти
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string]map[int]chan []byte)}
}

func (b *MemoryBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.topics[topic] {
		// медленный подписчик теряет сообщение и догоняет через since
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan []byte, 64)
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[int]chan []byte)
	}
	b.topics[topic][id] = ch

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.topics[topic]; ok {
				if _, ok := subs[id]; ok {
					delete(subs, id)
					close(ch)
				}
				if len(subs) == 0 {
					delete(b.topics, topic)
				}
			}
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()
	return ch, unsubscribe, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.topics {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.topics, topic)
	}
	b.closed = true
	return nil
}
