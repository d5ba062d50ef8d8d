package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan ChatEvent) ChatEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return ChatEvent{}
}

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub(NewMemoryBroker())
	defer hub.Close()
	ctx := context.Background()

	group := uuid.New()
	other := uuid.New()
	events, unsubscribe, err := hub.SubscribeChat(ctx, group)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, hub.PublishChat(ctx, ChatEvent{ID: uuid.New(), GroupID: other, Message: "not for us"}))
	sent := ChatEvent{ID: uuid.New(), GroupID: group, UserID: uuid.New(), Nickname: "nimal", Message: "hello", CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, hub.PublishChat(ctx, sent))

	got := receive(t, events)
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, "hello", got.Message)
	assert.Equal(t, "nimal", got.Nickname)
	assert.True(t, sent.CreatedAt.Equal(got.CreatedAt))
}

func TestMemoryBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewMemoryBroker()
	ch, unsubscribe, err := b.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()
	_, ok := <-ch
	assert.False(t, ok)
	assert.NoError(t, b.Publish(context.Background(), "t", []byte("x")))
}

func TestMemoryBroker_ContextCancelUnsubscribes(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, err := b.Subscribe(ctx, "t")
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestMemoryBroker_Close(t *testing.T) {
	b := NewMemoryBroker()
	ch, unsubscribe, err := b.Subscribe(context.Background(), "t")
	require.NoError(t, err)
	require.NoError(t, b.Close())
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)
	_, _, err = b.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHub_UnsubscribeReleasesBlockedForwarder(t *testing.T) {
	hub := NewHub(NewMemoryBroker())
	defer hub.Close()
	ctx := context.Background()
	group := uuid.New()

	events, unsubscribe, err := hub.SubscribeChat(ctx, group)
	require.NoError(t, err)

	// читатель ушел: буфер заполнен, следующее событие держит пересылку
	for i := 0; i <= chatBuffer; i++ {
		require.NoError(t, hub.PublishChat(ctx, ChatEvent{ID: uuid.New(), GroupID: group}))
	}
	require.Eventually(t, func() bool { return len(events) == chatBuffer }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	unsubscribe()

	received := 0
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				assert.Equal(t, chatBuffer, received)
				return
			}
			received++
		case <-timeout:
			t.Fatal("forwarder did not stop after unsubscribe")
		}
	}
}
