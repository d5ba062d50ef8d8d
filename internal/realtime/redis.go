package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrClosed брокер уже закрыт
var ErrClosed = errors.New("broker closed")

// RedisBroker раздает сообщения через Redis Pub/Sub
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker создает брокер поверх готового клиента
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, func(), error) {
	ps := b.client.Subscribe(ctx, topic)
	// ждем подтверждения подписки, иначе сообщения до него теряются
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	out := make(chan []byte, 64)
	in := ps.Channel()
	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
		})
	}, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
