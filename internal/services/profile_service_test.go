package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
)

func TestProfileService_BulkUpdateRole(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	first := newSession(t, repos, "first", models.RoleStudent)
	second := newSession(t, repos, "second", models.RoleStudent)

	events := access.NewEvents()
	changes, stop := events.Subscribe()
	defer stop()
	svc := NewProfileService(repos.Profiles, events, nil)
	ids := []uuid.UUID{first.ProfileID(), second.ProfileID()}

	_, err := svc.BulkUpdateRole(ctx, admin, ids, models.AppRole("owner"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.BulkUpdateRole(ctx, admin, nil, models.RoleTeacher)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.BulkUpdateRole(ctx, teacher, ids, models.RoleTeacher)
	assert.ErrorIs(t, err, access.ErrForbidden)
	_, err = svc.BulkUpdateRole(ctx, admin, []uuid.UUID{uuid.New()}, models.RoleTeacher)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.BulkUpdateRole(ctx, admin, ids, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	notified := map[uuid.UUID]bool{}
	for i := 0; i < 2; i++ {
		ev := <-changes
		assert.Equal(t, access.EventRoleChanged, ev.Type)
		notified[ev.UserID] = true
	}
	assert.True(t, notified[first.UserID])
	assert.True(t, notified[second.UserID])

	p, err := repos.Profiles.GetByID(ctx, first.ProfileID())
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, p.EffectiveRole())

	stats, err := svc.RoleStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, &RoleStats{Total: 4, Teachers: 3, Admins: 1}, stats)
}

func TestProfileService_UpdateMe(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	newSession(t, repos, "taken", models.RoleStudent)
	svc := NewProfileService(repos.Profiles, access.NewEvents(), nil)

	_, err := svc.UpdateMe(ctx, student, ProfileUpdate{Nickname: ptr("Taken")})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.UpdateMe(ctx, student, ProfileUpdate{Nickname: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateMe(ctx, student, ProfileUpdate{GradeLevel: ptr("grade_99")})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.UpdateMe(ctx, student, ProfileUpdate{Nickname: ptr(" kid "), ContactNumber: ptr(" 0771234567 ")})
	require.NoError(t, err)
	assert.Equal(t, "kid", p.Nickname)
	require.NotNil(t, p.ContactNumber)
	assert.Equal(t, "0771234567", *p.ContactNumber)
}

func TestProfileService_SetRoleAndLinkTelegram(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	student := newSession(t, repos, "student", models.RoleStudent)
	svc := NewProfileService(repos.Profiles, access.NewEvents(), nil)

	_, err := svc.SetRoleByNickname(ctx, "student", models.AppRole("root"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetRoleByNickname(ctx, "nobody", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNotFound)
	p, err := svc.SetRoleByNickname(ctx, " student ", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.EffectiveRole())

	assert.ErrorIs(t, svc.LinkTelegram(ctx, "not-a-code", 42), ErrValidation)
	assert.ErrorIs(t, svc.LinkTelegram(ctx, uuid.NewString(), 42), ErrNotFound)
	require.NoError(t, svc.LinkTelegram(ctx, student.ProfileID().String(), 42))

	linked, err := repos.Profiles.GetByID(ctx, student.ProfileID())
	require.NoError(t, err)
	require.NotNil(t, linked.TelegramChatID)
	assert.Equal(t, int64(42), *linked.TelegramChatID)
}
