package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

// GroupInput данные новой группы
type GroupInput struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description"`
	SchoolTagID *uuid.UUID `json:"school_tag_id"`
}

type GroupService interface {
	Create(ctx context.Context, actor access.Session, in GroupInput) (*models.Group, error)
	Get(ctx context.Context, actor access.Session, id uuid.UUID) (*models.Group, error)
	List(ctx context.Context, actor access.Session) ([]*models.Group, error)
	Delete(ctx context.Context, actor access.Session, id uuid.UUID) error

	EligibleMembers(ctx context.Context, actor access.Session, groupID uuid.UUID) ([]*models.Profile, error)
	AddMember(ctx context.Context, actor access.Session, groupID, profileID uuid.UUID) (*models.GroupMember, error)
	RemoveMember(ctx context.Context, actor access.Session, groupID, profileID uuid.UUID) error
	ListMembers(ctx context.Context, actor access.Session, groupID uuid.UUID) ([]*models.GroupMember, error)
	MyGroups(ctx context.Context, actor access.Session) ([]*models.GroupMember, error)

	// CanView проверяет, что actor участник группы или учитель
	CanView(ctx context.Context, actor access.Session, groupID uuid.UUID) error
}

type groupService struct {
	repos           *repository.Repositories
	autoJoinCreator bool
}

// NewGroupService создает сервис групп. autoJoinCreator добавляет создателя в участники.
func NewGroupService(repos *repository.Repositories, autoJoinCreator bool) GroupService {
	return &groupService{repos: repos, autoJoinCreator: autoJoinCreator}
}

func (s *groupService) Create(ctx context.Context, actor access.Session, in GroupInput) (*models.Group, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("group name is required")
	}

	g := &models.Group{
		Name:        name,
		Description: trimmedOrNil(in.Description),
		SchoolTagID: in.SchoolTagID,
		CreatedBy:   actor.ProfileID(),
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if g.SchoolTagID != nil {
			if _, err := tx.SchoolTags.GetByID(ctx, *g.SchoolTagID); err != nil {
				return wrapRepo(err, "school tag")
			}
		}
		if err := tx.Groups.Create(ctx, g); err != nil {
			return wrapRepo(err, "create group")
		}
		if !s.autoJoinCreator {
			return nil
		}
		return tx.Groups.AddMember(ctx, &models.GroupMember{GroupID: g.ID, UserID: actor.ProfileID(), AddedBy: actor.ProfileID()})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *groupService) Get(ctx context.Context, actor access.Session, id uuid.UUID) (*models.Group, error) {
	if err := s.CanView(ctx, actor, id); err != nil {
		return nil, err
	}
	g, err := s.repos.Groups.GetByID(ctx, id)
	return g, wrapRepo(err, "group")
}

func (s *groupService) List(ctx context.Context, actor access.Session) ([]*models.Group, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	return s.repos.Groups.List(ctx)
}

// Delete доступен создателю группы и администратору
func (s *groupService) Delete(ctx context.Context, actor access.Session, id uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return err
	}
	g, err := s.repos.Groups.GetByID(ctx, id)
	if err != nil {
		return wrapRepo(err, "group")
	}
	if g.CreatedBy != actor.ProfileID() && !actor.IsAdmin() {
		return access.ErrForbidden
	}
	return s.repos.Groups.Delete(ctx, id)
}

// EligibleMembers: ученики с тегом группы, а для группы без тега ученики с общим с учителем тегом
func (s *groupService) EligibleMembers(ctx context.Context, actor access.Session, groupID uuid.UUID) ([]*models.Profile, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	g, err := s.repos.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, wrapRepo(err, "group")
	}
	return s.eligible(ctx, s.repos, actor, g)
}

func (s *groupService) eligible(ctx context.Context, repos *repository.Repositories, actor access.Session, g *models.Group) ([]*models.Profile, error) {
	tagIDs := []uuid.UUID{}
	if g.SchoolTagID != nil {
		tagIDs = append(tagIDs, *g.SchoolTagID)
	} else {
		ids, err := repos.SchoolTags.TagIDsForUser(ctx, actor.ProfileID())
		if err != nil {
			return nil, err
		}
		tagIDs = ids
	}
	return repos.SchoolTags.StudentsWithAnyTag(ctx, tagIDs)
}

func (s *groupService) AddMember(ctx context.Context, actor access.Session, groupID, profileID uuid.UUID) (*models.GroupMember, error) {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return nil, err
	}
	member := &models.GroupMember{GroupID: groupID, UserID: profileID, AddedBy: actor.ProfileID()}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		g, err := tx.Groups.GetByID(ctx, groupID)
		if err != nil {
			return wrapRepo(err, "group")
		}
		candidates, err := s.eligible(ctx, tx, actor, g)
		if err != nil {
			return err
		}
		if !containsProfile(candidates, profileID) {
			return validationError("student is not eligible for this group")
		}
		exists, err := tx.Groups.IsMember(ctx, groupID, profileID)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("student is already a member")
		}
		return wrapRepo(tx.Groups.AddMember(ctx, member), "add member")
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func containsProfile(ps []*models.Profile, id uuid.UUID) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *groupService) RemoveMember(ctx context.Context, actor access.Session, groupID, profileID uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireTeacher); err != nil {
		return err
	}
	ok, err := s.repos.Groups.IsMember(ctx, groupID, profileID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("group member: %w", ErrNotFound)
	}
	return s.repos.Groups.RemoveMember(ctx, groupID, profileID)
}

func (s *groupService) ListMembers(ctx context.Context, actor access.Session, groupID uuid.UUID) ([]*models.GroupMember, error) {
	if err := s.CanView(ctx, actor, groupID); err != nil {
		return nil, err
	}
	return s.repos.Groups.ListMembers(ctx, groupID)
}

func (s *groupService) MyGroups(ctx context.Context, actor access.Session) ([]*models.GroupMember, error) {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return nil, err
	}
	return s.repos.Groups.ListMemberships(ctx, actor.ProfileID())
}

func (s *groupService) CanView(ctx context.Context, actor access.Session, groupID uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireAuthenticated); err != nil {
		return err
	}
	if actor.IsTeacher() {
		return nil
	}
	ok, err := s.repos.Groups.IsMember(ctx, groupID, actor.ProfileID())
	if err != nil {
		return err
	}
	if !ok {
		return access.ErrForbidden
	}
	return nil
}
