package reminders

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Fires(t *testing.T) {
	s := NewScheduler()
	fired := make(chan struct{}, 1)

	ok := s.Schedule(uuid.New(), time.Now().Add(20*time.Millisecond), func() { fired <- struct{}{} })
	require.True(t, ok)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_RescheduleReplaces(t *testing.T) {
	s := NewScheduler()
	key := uuid.New()
	var first, second atomic.Int32

	s.Schedule(key, time.Now().Add(30*time.Millisecond), func() { first.Add(1) })
	later := time.Now().Add(60 * time.Millisecond)
	s.Schedule(key, later, func() { second.Add(1) })

	at, ok := s.Pending(key)
	require.True(t, ok)
	assert.Equal(t, later, at)
	assert.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(0), first.Load(), "replaced task must not fire")
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	key := uuid.New()
	var fired atomic.Int32

	s.Schedule(key, time.Now().Add(20*time.Millisecond), func() { fired.Add(1) })
	s.Cancel(key)
	s.Cancel(key)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
	_, ok := s.Pending(key)
	assert.False(t, ok)
}

func TestScheduler_PastTimeNotScheduled(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.Schedule(uuid.New(), time.Now().Add(-time.Minute), func() {}))
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_Stop(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Int32
	for i := 0; i < 3; i++ {
		s.Schedule(uuid.New(), time.Now().Add(20*time.Millisecond), func() { fired.Add(1) })
	}
	s.Stop()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Schedule(uuid.New(), time.Now().Add(time.Hour), func() {}))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestScheduler_RearmFromCallback(t *testing.T) {
	s := NewScheduler()
	t.Cleanup(s.Stop)
	key := uuid.New()
	var fired atomic.Int32

	var again func(Token)
	again = func(tok Token) {
		if fired.Add(1) == 1 {
			s.Rearm(tok, time.Now().Add(20*time.Millisecond), again)
		}
	}
	require.True(t, s.Arm(key, time.Now().Add(20*time.Millisecond), again))

	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RearmAfterCancelIsIgnored(t *testing.T) {
	s := NewScheduler()
	t.Cleanup(s.Stop)
	key := uuid.New()

	require.True(t, s.Schedule(key, time.Now().Add(time.Hour), func() {}))
	tok := s.TokenFor(key)
	assert.True(t, s.Current(tok))

	s.Cancel(key)
	assert.False(t, s.Current(tok))
	assert.False(t, s.Rearm(tok, time.Now().Add(time.Hour), func(Token) {}))
	_, ok := s.Pending(key)
	assert.False(t, ok)

	// перепланирование тоже делает токен устаревшим
	require.True(t, s.Schedule(key, time.Now().Add(time.Hour), func() {}))
	tok = s.TokenFor(key)
	later := time.Now().Add(2 * time.Hour)
	require.True(t, s.Schedule(key, later, func() {}))
	assert.False(t, s.Rearm(tok, time.Now().Add(3*time.Hour), func(Token) {}))
	at, ok := s.Pending(key)
	require.True(t, ok)
	assert.Equal(t, later, at)
}
