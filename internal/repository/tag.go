package repository

import (
	"context"
	"strings"

	"chronicle/internal/models"
	"chronicle/internal/observability"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag data operations.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	ListAll(ctx context.Context) ([]*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error)
	PostsByTag(ctx context.Context, tagID uint, page, size int) ([]*models.Post, int64, error)
	SoftDelete(ctx context.Context, id uint) error
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	defer observability.TrackQuery("create", "tags")()
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	defer observability.TrackQuery("read", "tags")()
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) ListAll(ctx context.Context) ([]*models.Tag, error) {
	defer observability.TrackQuery("list", "tags")()
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	defer observability.TrackQuery("read", "tags")()
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreateByNames resolves each name to a tag, creating the ones that
// don't exist yet. Matching is case-insensitive; the first spelling seen
// wins. Duplicates and blanks in the input are skipped.
func (r *tagRepository) GetOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	defer observability.TrackQuery("upsert", "tags")()

	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		var tag models.Tag
		err := r.db.WithContext(ctx).
			Where("LOWER(name) = ?", key).
			First(&tag).Error
		if err == gorm.ErrRecordNotFound {
			tag = models.Tag{Name: name}
			err = r.db.WithContext(ctx).Create(&tag).Error
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// SoftDelete hides the tag from listings and name resolution. The post_tags
// rows stay; a recreated tag with the same name is a new row.
func (r *tagRepository) SoftDelete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "tags")()
	res := r.db.WithContext(ctx).Delete(&models.Tag{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) PostsByTag(ctx context.Context, tagID uint, page, size int) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	base := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", tagID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := base.Session(&gorm.Session{}).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("posts.created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
