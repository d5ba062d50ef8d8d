package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
)

func TestSchoolTagService_CreateValidation(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	svc := NewSchoolTagService(repos)

	_, err := svc.Create(ctx, teacher, SchoolTagInput{Name: "royal", DisplayName: "Royal College"})
	assert.ErrorIs(t, err, access.ErrForbidden)
	_, err = svc.Create(ctx, admin, SchoolTagInput{Name: "royal", DisplayName: "Royal College", Color: "blue"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, admin, SchoolTagInput{Name: " ", DisplayName: "Royal College"})
	assert.ErrorIs(t, err, ErrValidation)

	tag, err := svc.Create(ctx, admin, SchoolTagInput{Name: " Royal ", DisplayName: "Royal College"})
	require.NoError(t, err)
	assert.Equal(t, "royal", tag.Name)
	assert.Equal(t, models.DefaultTagColor, tag.Color)

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestSchoolTagService_AssignNotifiesUser(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	student := newSession(t, repos, "student", models.RoleStudent)
	other := newSession(t, repos, "other", models.RoleStudent)
	tag := newTag(t, repos, "royal")
	svc := NewSchoolTagService(repos)

	require.NoError(t, svc.Assign(ctx, admin, student.ProfileID(), tag.ID))
	assert.ErrorIs(t, svc.Assign(ctx, admin, student.ProfileID(), tag.ID), ErrConflict)
	assert.ErrorIs(t, svc.Assign(ctx, student, other.ProfileID(), tag.ID), access.ErrForbidden)

	mine, err := svc.ListForUser(ctx, student, student.ProfileID())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	_, err = svc.ListForUser(ctx, other, student.ProfileID())
	assert.ErrorIs(t, err, access.ErrForbidden)

	require.NoError(t, svc.Unassign(ctx, admin, student.ProfileID(), tag.ID))
	assert.ErrorIs(t, svc.Unassign(ctx, admin, student.ProfileID(), tag.ID), ErrNotFound)

	inbox, err := repos.Messages.ListByUser(ctx, student.ProfileID())
	require.NoError(t, err)
	types := map[models.MessageType]bool{}
	for _, m := range inbox {
		types[m.MessageType] = true
	}
	assert.True(t, types[models.MessageTypeNewTag])
	assert.True(t, types[models.MessageTypeTagChange])
}
