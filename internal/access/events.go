package access

import (
	"sync"
	"time"
)

// Events раздает события аутентификации всем подписчикам
type Events struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan AuthEvent
}

// NewEvents создает шину событий
func NewEvents() *Events {
	return &Events{subs: make(map[int]chan AuthEvent)}
}

// Subscribe возвращает канал событий и функцию отписки
func (e *Events) Subscribe() (<-chan AuthEvent, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	ch := make(chan AuthEvent, 16)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
}

// Publish рассылает событие. Медленный подписчик пропускает событие, а не блокирует отправителя.
func (e *Events) Publish(ev AuthEvent) {
	if e == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
