// Package realtime раздает события чата подписчикам, в том числе между экземплярами сервера.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const chatBuffer = 16

// Broker публикует сырые сообщения по темам
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe возвращает канал сообщений темы. Канал закрывается после отписки или отмены ctx.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, func(), error)
	Close() error
}

// ChatEvent новое сообщение группового чата
type ChatEvent struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	UserID    uuid.UUID `json:"user_id"`
	Nickname  string    `json:"nickname"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Hub типизированная обертка над брокером для событий чата
type Hub struct {
	broker Broker
}

// NewHub создает хаб поверх брокера
func NewHub(broker Broker) *Hub {
	return &Hub{broker: broker}
}

func groupTopic(groupID uuid.UUID) string {
	return "group_chat:" + groupID.String()
}

// PublishChat рассылает сообщение участникам группы
func (h *Hub) PublishChat(ctx context.Context, ev ChatEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode chat event: %w", err)
	}
	return h.broker.Publish(ctx, groupTopic(ev.GroupID), payload)
}

// SubscribeChat подписывается на сообщения группы.
// Канал закрывается после отписки или отмены ctx, даже если читатель уже ушел.
func (h *Hub) SubscribeChat(ctx context.Context, groupID uuid.UUID) (<-chan ChatEvent, func(), error) {
	raw, unsubscribe, err := h.broker.Subscribe(ctx, groupTopic(groupID))
	if err != nil {
		return nil, nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}

	out := make(chan ChatEvent, chatBuffer)
	go func() {
		defer close(out)
		for payload := range raw {
			var ev ChatEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()
	return out, stop, nil
}

// Close закрывает брокер
func (h *Hub) Close() error {
	return h.broker.Close()
}
