// Package reminders держит отложенные задачи напоминаний, по одной на ключ.
package reminders

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheduler планирует задачи по ключу. Повторное планирование заменяет прежнюю задачу.
type Scheduler struct {
	mu      sync.Mutex
	now     func() time.Time
	tasks   map[uuid.UUID]*task
	gens    map[uuid.UUID]uint64
	stopped bool
}

type task struct {
	timer *time.Timer
	at    time.Time
}

// Token поколение задачи по ключу. Любые Cancel и Schedule по ключу делают прежний токен устаревшим.
type Token struct {
	Key uuid.UUID
	gen uint64
}

// NewScheduler создает планировщик
func NewScheduler() *Scheduler {
	return &Scheduler{
		now:   time.Now,
		tasks: make(map[uuid.UUID]*task),
		gens:  make(map[uuid.UUID]uint64),
	}
}

// Schedule запускает fn в момент at. Уже прошедший момент не планируется.
func (s *Scheduler) Schedule(key uuid.UUID, at time.Time, fn func()) bool {
	return s.Arm(key, at, func(Token) { fn() })
}

// Arm как Schedule, но передает в fn токен, по которому задачу можно перевзвести через Rearm
func (s *Scheduler) Arm(key uuid.UUID, at time.Time, fn func(Token)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
	return s.scheduleLocked(key, at, fn)
}

// Rearm планирует задачу заново, только если после выдачи tok ключ не отменяли и не перепланировали
func (s *Scheduler) Rearm(tok Token, at time.Time, fn func(Token)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[tok.Key] != tok.gen {
		return false
	}
	s.cancelLocked(tok.Key)
	return s.scheduleLocked(tok.Key, at, fn)
}

// Current сообщает, действителен ли еще токен
func (s *Scheduler) Current(tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[tok.Key] == tok.gen
}

// TokenFor текущий токен ключа
func (s *Scheduler) TokenFor(key uuid.UUID) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Token{Key: key, gen: s.gens[key]}
}

func (s *Scheduler) scheduleLocked(key uuid.UUID, at time.Time, fn func(Token)) bool {
	if s.stopped {
		return false
	}
	delay := at.Sub(s.now())
	if delay <= 0 {
		return false
	}

	tok := Token{Key: key, gen: s.gens[key]}
	t := &task{at: at}
	t.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// задачу могли заменить или отменить, пока таймер срабатывал
		if s.tasks[key] != t {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		fn(tok)
	})
	s.tasks[key] = t
	return true
}

// Cancel отменяет задачу по ключу
func (s *Scheduler) Cancel(key uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
}

// cancelLocked снимает задачу и сдвигает поколение ключа, даже если задача уже сработала
func (s *Scheduler) cancelLocked(key uuid.UUID) {
	s.gens[key]++
	if t, ok := s.tasks[key]; ok {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}

// Pending возвращает время срабатывания задачи, если она запланирована
func (s *Scheduler) Pending(key uuid.UUID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return time.Time{}, false
	}
	return t.at, true
}

// Len число запланированных задач
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop отменяет все задачи и запрещает новые
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	for key := range s.gens {
		s.gens[key]++
	}
	s.stopped = true
}
