package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
)

var tagColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SchoolTagInput данные тега
type SchoolTagInput struct {
	Name        string  `json:"name" binding:"required"`
	DisplayName string  `json:"display_name" binding:"required"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

// SchoolTagService управляет тегами школ. Все изменения доступны только администратору.
type SchoolTagService interface {
	List(ctx context.Context) ([]*models.SchoolTag, error)
	Create(ctx context.Context, actor access.Session, in SchoolTagInput) (*models.SchoolTag, error)
	Update(ctx context.Context, actor access.Session, id uuid.UUID, in SchoolTagInput) (*models.SchoolTag, error)
	Delete(ctx context.Context, actor access.Session, id uuid.UUID) error

	Assign(ctx context.Context, actor access.Session, profileID, tagID uuid.UUID) error
	Unassign(ctx context.Context, actor access.Session, profileID, tagID uuid.UUID) error
	ListForUser(ctx context.Context, actor access.Session, profileID uuid.UUID) ([]*models.UserSchoolTag, error)
}

type schoolTagService struct {
	repos *repository.Repositories
}

// NewSchoolTagService создает сервис тегов
func NewSchoolTagService(repos *repository.Repositories) SchoolTagService {
	return &schoolTagService{repos: repos}
}

// List доступен без входа: теги нужны форме регистрации
func (s *schoolTagService) List(ctx context.Context) ([]*models.SchoolTag, error) {
	return s.repos.SchoolTags.List(ctx)
}

func (in *SchoolTagInput) normalize() error {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Color = strings.TrimSpace(in.Color)
	if in.Name == "" || in.DisplayName == "" {
		return validationError("name and display name are required")
	}
	if in.Color == "" {
		in.Color = models.DefaultTagColor
	}
	if !tagColorRe.MatchString(in.Color) {
		return validationError("color must be a hex value like %s", models.DefaultTagColor)
	}
	in.Description = trimmedOrNil(in.Description)
	return nil
}

func (s *schoolTagService) Create(ctx context.Context, actor access.Session, in SchoolTagInput) (*models.SchoolTag, error) {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	tag := &models.SchoolTag{
		Name:        in.Name,
		DisplayName: in.DisplayName,
		Color:       in.Color,
		Description: in.Description,
		CreatedBy:   actor.ProfileID(),
	}
	if err := s.repos.SchoolTags.Create(ctx, tag); err != nil {
		return nil, wrapRepo(err, "create school tag")
	}
	return tag, nil
}

func (s *schoolTagService) Update(ctx context.Context, actor access.Session, id uuid.UUID, in SchoolTagInput) (*models.SchoolTag, error) {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	tag, err := s.repos.SchoolTags.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepo(err, "school tag")
	}
	tag.Name = in.Name
	tag.DisplayName = in.DisplayName
	tag.Color = in.Color
	tag.Description = in.Description
	if err := s.repos.SchoolTags.Update(ctx, tag); err != nil {
		return nil, wrapRepo(err, "update school tag")
	}
	return tag, nil
}

func (s *schoolTagService) Delete(ctx context.Context, actor access.Session, id uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return err
	}
	if _, err := s.repos.SchoolTags.GetByID(ctx, id); err != nil {
		return wrapRepo(err, "school tag")
	}
	return wrapRepo(s.repos.SchoolTags.Delete(ctx, id), "delete school tag")
}

// Assign выдает тег и кладет сообщение new_tag во входящие пользователя
func (s *schoolTagService) Assign(ctx context.Context, actor access.Session, profileID, tagID uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		tag, err := tx.SchoolTags.GetByID(ctx, tagID)
		if err != nil {
			return wrapRepo(err, "school tag")
		}
		if _, err := tx.Profiles.GetByID(ctx, profileID); err != nil {
			return wrapRepo(err, "profile")
		}
		has, err := tx.SchoolTags.HasTag(ctx, profileID, tagID)
		if err != nil {
			return err
		}
		if has {
			return conflictError("user already has tag %s", tag.DisplayName)
		}

		link := &models.UserSchoolTag{UserID: profileID, SchoolTagID: tagID, AssignedBy: actor.ProfileID()}
		if err := tx.SchoolTags.Assign(ctx, link); err != nil {
			return wrapRepo(err, "assign school tag")
		}
		return tx.Messages.Create(ctx, &models.Message{
			UserID:      profileID,
			MessageType: models.MessageTypeNewTag,
			Title:       "New school tag",
			Content:     fmt.Sprintf("You have been added to %s.", tag.DisplayName),
		})
	})
}

// Unassign снимает тег и сообщает об изменении
func (s *schoolTagService) Unassign(ctx context.Context, actor access.Session, profileID, tagID uuid.UUID) error {
	if err := access.Authorize(actor, access.RequireAdmin); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		tag, err := tx.SchoolTags.GetByID(ctx, tagID)
		if err != nil {
			return wrapRepo(err, "school tag")
		}
		has, err := tx.SchoolTags.HasTag(ctx, profileID, tagID)
		if err != nil {
			return err
		}
		if !has {
			return fmt.Errorf("tag assignment: %w", ErrNotFound)
		}
		if err := tx.SchoolTags.Unassign(ctx, profileID, tagID); err != nil {
			return err
		}
		return tx.Messages.Create(ctx, &models.Message{
			UserID:      profileID,
			MessageType: models.MessageTypeTagChange,
			Title:       "School tag removed",
			Content:     fmt.Sprintf("You have been removed from %s.", tag.DisplayName),
		})
	})
}

// ListForUser: свои теги видит любой пользователь, чужие только администратор
func (s *schoolTagService) ListForUser(ctx context.Context, actor access.Session, profileID uuid.UUID) ([]*models.UserSchoolTag, error) {
	req := access.RequireAdmin
	if profileID == actor.ProfileID() {
		req = access.RequireAuthenticated
	}
	if err := access.Authorize(actor, req); err != nil {
		return nil, err
	}
	return s.repos.SchoolTags.ListForUser(ctx, profileID)
}
