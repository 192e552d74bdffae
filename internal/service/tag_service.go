package service

import (
	"context"
	"errors"
	"strings"

	"chronicle/internal/models"
	"chronicle/internal/repository"

	"gorm.io/gorm"
)

const maxTagNameLen = 50

type TagService struct {
	tagRepo repository.TagRepository
	isAdmin func(ctx context.Context, userID uint) (bool, error)
}

type CreateTagInput struct {
	UserID uint
	Name   string
}

type DeleteTagInput struct {
	UserID uint
	TagID  uint
}

func NewTagService(
	tagRepo repository.TagRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *TagService {
	return &TagService{tagRepo: tagRepo, isAdmin: isAdmin}
}

// CreateTag adds a tag ahead of any post using it. Most tags come into being
// through post create/update; this is the curation path. Names are unique
// case-insensitively, so a duplicate is a conflict.
func (s *TagService) CreateTag(ctx context.Context, in CreateTagInput) (*models.TagView, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	if len(name) > maxTagNameLen {
		return nil, models.NewValidationError("Tag name too long")
	}
	if _, err := s.tagRepo.GetByName(ctx, name); err == nil {
		return nil, models.NewConflictError("Tag already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return newTagView(tag), nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.TagView, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Tag", id)
	}
	return newTagView(tag), nil
}

// Tags are cheap to list and churn with every post edit, so the catalog is
// served straight from the database.
func (s *TagService) ListTags(ctx context.Context) ([]*models.TagView, error) {
	tags, err := s.tagRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*models.TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, newTagView(tag))
	}
	return views, nil
}

// PostsByTag serves one page of posts carrying the named tag.
func (s *TagService) PostsByTag(ctx context.Context, tagName string, page int) (*models.Page[*models.PostView], error) {
	if strings.TrimSpace(tagName) == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	tag, err := s.tagRepo.GetByName(ctx, tagName)
	if err != nil {
		return nil, notFound(err, "Tag", tagName)
	}
	page, size := models.NormalizePage(page, 0, models.DefaultPageSize)
	posts, total, err := s.tagRepo.PostsByTag(ctx, tag.ID, page, size)
	if err != nil {
		return nil, err
	}
	return models.NewPage(newPostViews(posts), page, size, total), nil
}

// DeleteTag soft-deletes the tag. Admin only. Posts keep their association
// rows; the tag just stops resolving.
func (s *TagService) DeleteTag(ctx context.Context, in DeleteTagInput) error {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return err
	}
	if err := s.tagRepo.SoftDelete(ctx, in.TagID); err != nil {
		return notFound(err, "Tag", in.TagID)
	}
	return nil
}

func (s *TagService) requireAdmin(ctx context.Context, userID uint) error {
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("Admin privileges required")
}

func newTagView(tag *models.Tag) *models.TagView {
	return &models.TagView{
		ID:        tag.ID,
		Name:      tag.Name,
		CreatedAt: tag.CreatedAt,
	}
}
