package access

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"brainself/internal/models"
)

// fakeProfiles отдает профили из карты и считает обращения
type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	err      error
	calls    int
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) setRole(userID uuid.UUID, role *models.AppRole) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID].Role = role
}

func rolePtr(r models.AppRole) *models.AppRole { return &r }

func TestRolePredicates(t *testing.T) {
	roles := []*models.AppRole{nil, rolePtr(models.RoleStudent), rolePtr(models.RoleTeacher), rolePtr(models.RoleAdmin)}
	for _, r := range roles {
		s := ForProfile(&models.Profile{ID: uuid.New(), UserID: uuid.New(), Role: r})

		if s.IsTeacher() {
			assert.Contains(t, []models.AppRole{models.RoleTeacher, models.RoleAdmin}, s.Role)
		}
		if s.IsAdmin() {
			assert.Equal(t, models.RoleAdmin, s.Role)
			assert.True(t, s.IsTeacher(), "admin implies teacher")
		}
		if s.IsStudent() {
			assert.Equal(t, models.RoleStudent, s.Role)
		}
	}

	// пустая роль профиля трактуется как ученик
	s := ForProfile(&models.Profile{ID: uuid.New(), UserID: uuid.New()})
	assert.True(t, s.IsStudent())
	assert.False(t, s.IsTeacher())
}

func TestResolver_Resolve(t *testing.T) {
	teacherUser := uuid.New()
	nullRoleUser := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{
		teacherUser:  {ID: uuid.New(), UserID: teacherUser, Role: rolePtr(models.RoleTeacher)},
		nullRoleUser: {ID: uuid.New(), UserID: nullRoleUser},
	}}
	r := NewResolver(profiles, nil)
	ctx := context.Background()

	s := r.Resolve(ctx, nil)
	assert.Equal(t, models.AppRole(""), s.Role)
	assert.Equal(t, 0, profiles.calls, "anonymous resolution must not fetch")

	s = r.Resolve(ctx, &teacherUser)
	assert.Equal(t, models.RoleTeacher, s.Role)
	assert.True(t, s.IsAuthenticated())

	s = r.Resolve(ctx, &nullRoleUser)
	assert.Equal(t, models.RoleStudent, s.Role)

	unknown := uuid.New()
	s = r.Resolve(ctx, &unknown)
	assert.Equal(t, models.AppRole(""), s.Role)
	assert.False(t, s.IsAuthenticated())
}

func TestResolver_FailsClosed(t *testing.T) {
	user := uuid.New()
	profiles := &fakeProfiles{
		profiles: map[uuid.UUID]*models.Profile{user: {ID: uuid.New(), UserID: user, Role: rolePtr(models.RoleAdmin)}},
		err:      errors.New("connection refused"),
	}
	s := NewResolver(profiles, nil).Resolve(context.Background(), &user)

	assert.False(t, s.IsAdmin())
	assert.False(t, s.IsTeacher())
	assert.Equal(t, LoginRequired, Check(s, RequireAdmin))
}

func TestCheck(t *testing.T) {
	student := ForProfile(&models.Profile{ID: uuid.New(), UserID: uuid.New(), Role: rolePtr(models.RoleStudent)})
	teacher := ForProfile(&models.Profile{ID: uuid.New(), UserID: uuid.New(), Role: rolePtr(models.RoleTeacher)})
	admin := ForProfile(&models.Profile{ID: uuid.New(), UserID: uuid.New(), Role: rolePtr(models.RoleAdmin)})
	loading := LoadingSession(uuid.New())

	cases := []struct {
		name string
		s    Session
		req  Requirement
		want Decision
	}{
		{"anonymous teacher page", Anonymous(), RequireTeacher, LoginRequired},
		{"loading never allows", loading, RequireAuthenticated, Pending},
		{"loading admin page", loading, RequireAdmin, Pending},
		{"student teacher page", student, RequireTeacher, Denied},
		{"student own page", student, RequireAuthenticated, Allow},
		{"teacher teacher page", teacher, RequireTeacher, Allow},
		{"teacher admin page", teacher, RequireAdmin, Denied},
		{"admin teacher page", admin, RequireTeacher, Allow},
		{"admin admin page", admin, RequireAdmin, Allow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Check(tc.s, tc.req))
		})
	}

	assert.ErrorIs(t, Authorize(Anonymous(), RequireTeacher), ErrNotAuthenticated)
	assert.ErrorIs(t, Authorize(student, RequireTeacher), ErrForbidden)
	assert.ErrorIs(t, Authorize(loading, RequireTeacher), ErrRoleLoading)
	assert.NoError(t, Authorize(admin, RequireTeacher))
}

func TestTracker_ReResolvesOnEvents(t *testing.T) {
	user := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{
		user: {ID: uuid.New(), UserID: user, Role: rolePtr(models.RoleStudent)},
	}}
	tr := NewTracker(NewResolver(profiles, nil), &user)
	ctx := context.Background()

	assert.True(t, tr.Current().Loading, "role must be observable as loading before first resolution")
	assert.Equal(t, Pending, Check(tr.Current(), RequireAdmin))

	tr.Refresh(ctx)
	assert.True(t, tr.Current().IsStudent())

	// роль изменил администратор: без события трекер не кеширует новую роль, с событием перечитывает
	profiles.setRole(user, rolePtr(models.RoleAdmin))
	changed := tr.HandleEvent(ctx, AuthEvent{Type: EventRoleChanged, UserID: user})
	assert.True(t, changed)
	assert.True(t, tr.Current().IsAdmin())

	// чужие события игнорируются
	assert.False(t, tr.HandleEvent(ctx, AuthEvent{Type: EventSignedOut, UserID: uuid.New()}))
	assert.True(t, tr.Current().IsAdmin())

	assert.True(t, tr.HandleEvent(ctx, AuthEvent{Type: EventSignedOut, UserID: user}))
	assert.False(t, tr.Current().IsAuthenticated())
	assert.Equal(t, LoginRequired, Check(tr.Current(), RequireAuthenticated))
}

func TestTracker_RunWithEvents(t *testing.T) {
	user := uuid.New()
	profiles := &fakeProfiles{profiles: map[uuid.UUID]*models.Profile{
		user: {ID: uuid.New(), UserID: user, Role: rolePtr(models.RoleTeacher)},
	}}
	tr := NewTracker(NewResolver(profiles, nil), &user)
	tr.Refresh(context.Background())

	bus := NewEvents()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	changes := make(chan Session, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx, events, func(s Session) { changes <- s })

	bus.Publish(AuthEvent{Type: EventSignedOut, UserID: user})

	select {
	case s := <-changes:
		assert.False(t, s.IsAuthenticated())
	case <-time.After(time.Second):
		t.Fatal("tracker did not react to sign-out")
	}
}

func TestEvents_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEvents()
	ch, unsubscribe := bus.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	require.False(t, ok)
	bus.Publish(AuthEvent{Type: EventSignedIn, UserID: uuid.New()})
}
