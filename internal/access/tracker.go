package access

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType тип перехода состояния аутентификации
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
	EventRoleChanged    EventType = "role_changed"
)

// AuthEvent сообщает об изменении состояния identity
type AuthEvent struct {
	Type   EventType
	UserID uuid.UUID
	At     time.Time
}

// Tracker хранит наблюдаемое состояние роли для долгоживущего соединения.
// На каждое событие своей identity он синхронно определяет роль заново.
type Tracker struct {
	resolver *Resolver

	mu       sync.RWMutex
	identity *uuid.UUID
	session  Session
}

// NewTracker создает трекер в состоянии загрузки
func NewTracker(resolver *Resolver, identity *uuid.UUID) *Tracker {
	t := &Tracker{resolver: resolver}
	if identity != nil && *identity != uuid.Nil {
		id := *identity
		t.identity = &id
		t.session = LoadingSession(id)
	}
	return t
}

// Current возвращает последнее известное состояние
func (t *Tracker) Current() Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session
}

// Refresh переводит трекер в загрузку и определяет роль заново
func (t *Tracker) Refresh(ctx context.Context) Session {
	t.mu.Lock()
	identity := t.identity
	if identity != nil {
		t.session = LoadingSession(*identity)
	}
	t.mu.Unlock()

	s := t.resolver.Resolve(ctx, identity)

	t.mu.Lock()
	defer t.mu.Unlock()
	// identity могла смениться, пока шел запрос
	if !sameIdentity(identity, t.identity) {
		return t.session
	}
	t.session = s
	return s
}

// HandleEvent применяет событие; события чужих identity игнорируются.
// Возвращает true, если состояние изменилось.
func (t *Tracker) HandleEvent(ctx context.Context, ev AuthEvent) bool {
	t.mu.Lock()
	if t.identity == nil || *t.identity != ev.UserID {
		t.mu.Unlock()
		return false
	}
	if ev.Type == EventSignedOut {
		t.identity = nil
		t.session = Anonymous()
		t.mu.Unlock()
		return true
	}
	before := t.session
	t.mu.Unlock()

	after := t.Refresh(ctx)
	return before.Role != after.Role || before.Loading != after.Loading
}

// Run обрабатывает события до закрытия канала или отмены ctx.
// onChange вызывается после каждого изменения состояния.
func (t *Tracker) Run(ctx context.Context, events <-chan AuthEvent, onChange func(Session)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if t.HandleEvent(ctx, ev) && onChange != nil {
				onChange(t.Current())
			}
		}
	}
}

func sameIdentity(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
