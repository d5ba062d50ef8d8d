package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainself/internal/access"
	"brainself/internal/models"
)

func TestGroupService_GreenwoodEligibility(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	p1 := newSession(t, repos, "p1", models.RoleStudent)
	p2 := newSession(t, repos, "p2", models.RoleStudent)

	tags := NewSchoolTagService(repos)
	groups := NewGroupService(repos, false)

	tag, err := tags.Create(ctx, admin, SchoolTagInput{Name: "Greenwood", DisplayName: "Greenwood High"})
	require.NoError(t, err)
	assert.Equal(t, "greenwood", tag.Name)
	assert.Equal(t, models.DefaultTagColor, tag.Color)
	require.NoError(t, tags.Assign(ctx, admin, p1.ProfileID(), tag.ID))

	g, err := groups.Create(ctx, teacher, GroupInput{Name: "G1", SchoolTagID: &tag.ID})
	require.NoError(t, err)

	eligible, err := groups.EligibleMembers(ctx, teacher, g.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, p1.ProfileID(), eligible[0].ID)

	_, err = groups.AddMember(ctx, teacher, g.ID, p2.ProfileID())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = groups.AddMember(ctx, teacher, g.ID, p1.ProfileID())
	require.NoError(t, err)
	_, err = groups.AddMember(ctx, teacher, g.ID, p1.ProfileID())
	assert.ErrorIs(t, err, ErrConflict)

	// назначение тега оставило сообщение во входящих
	inbox, err := NewInboxService(repos, nil, nil).List(ctx, p1)
	require.NoError(t, err)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, models.MessageTypeNewTag, inbox.Messages[0].MessageType)
}

func TestGroupService_CreatorMembership(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)

	g, err := NewGroupService(repos, false).Create(ctx, teacher, GroupInput{Name: "Plain"})
	require.NoError(t, err)
	member, err := repos.Groups.IsMember(ctx, g.ID, teacher.ProfileID())
	require.NoError(t, err)
	assert.False(t, member, "creator is not a member by default")

	g, err = NewGroupService(repos, true).Create(ctx, teacher, GroupInput{Name: "Joined"})
	require.NoError(t, err)
	member, err = repos.Groups.IsMember(ctx, g.ID, teacher.ProfileID())
	require.NoError(t, err)
	assert.True(t, member)
}

func TestGroupService_Access(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	student := newSession(t, repos, "student", models.RoleStudent)
	groups := NewGroupService(repos, false)

	_, err := groups.Create(ctx, student, GroupInput{Name: "Nope"})
	assert.ErrorIs(t, err, access.ErrForbidden)
	_, err = groups.Create(ctx, access.Anonymous(), GroupInput{Name: "Nope"})
	assert.ErrorIs(t, err, access.ErrNotAuthenticated)
	_, err = groups.Create(ctx, teacher, GroupInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	g, err := groups.Create(ctx, teacher, GroupInput{Name: "G"})
	require.NoError(t, err)

	_, err = groups.ListMembers(ctx, student, g.ID)
	assert.ErrorIs(t, err, access.ErrForbidden, "non-member student cannot view")

	require.NoError(t, repos.Groups.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: student.ProfileID()}))
	members, err := groups.ListMembers(ctx, student, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	mine, err := groups.MyGroups(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, g.ID, mine[0].GroupID)

	require.NoError(t, groups.RemoveMember(ctx, teacher, g.ID, student.ProfileID()))
	assert.ErrorIs(t, groups.RemoveMember(ctx, teacher, g.ID, student.ProfileID()), ErrNotFound)
}

func TestGroupService_UntaggedGroupUsesTeacherTags(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	admin := newSession(t, repos, "admin", models.RoleAdmin)
	teacher := newSession(t, repos, "teacher", models.RoleTeacher)
	shared := newSession(t, repos, "shared", models.RoleStudent)
	other := newSession(t, repos, "other", models.RoleStudent)

	tags := NewSchoolTagService(repos)
	a, err := tags.Create(ctx, admin, SchoolTagInput{Name: "a", DisplayName: "A"})
	require.NoError(t, err)
	b, err := tags.Create(ctx, admin, SchoolTagInput{Name: "b", DisplayName: "B"})
	require.NoError(t, err)
	require.NoError(t, tags.Assign(ctx, admin, teacher.ProfileID(), a.ID))
	require.NoError(t, tags.Assign(ctx, admin, shared.ProfileID(), a.ID))
	require.NoError(t, tags.Assign(ctx, admin, other.ProfileID(), b.ID))

	groups := NewGroupService(repos, false)
	g, err := groups.Create(ctx, teacher, GroupInput{Name: "Untagged"})
	require.NoError(t, err)

	eligible, err := groups.EligibleMembers(ctx, teacher, g.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "shared", eligible[0].Nickname)
}
