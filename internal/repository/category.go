package repository

import (
	"context"
	"strings"

	"chronicle/internal/models"
	"chronicle/internal/observability"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	ListAll(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	SoftDelete(ctx context.Context, id uint) error
	PostCount(ctx context.Context, categoryID uint) (int64, error)
	RecentPosts(ctx context.Context, categoryID uint, limit int) ([]*models.Post, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	defer observability.TrackQuery("create", "categories")()
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	defer observability.TrackQuery("read", "categories")()
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	defer observability.TrackQuery("read", "categories")()
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	defer observability.TrackQuery("list", "categories")()
	var categories []*models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	defer observability.TrackQuery("update", "categories")()
	return r.db.WithContext(ctx).Save(category).Error
}

// SoftDelete hides the category and detaches its posts so they don't keep
// referencing a dead id.
func (r *categoryRepository) SoftDelete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "categories")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).
			UpdateColumn("category_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *categoryRepository) PostCount(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// RecentPosts loads the newest posts of one category for the digest view.
func (r *categoryRepository) RecentPosts(ctx context.Context, categoryID uint, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("category_id = ?", categoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
