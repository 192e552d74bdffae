package service

import (
	"context"
	"errors"
	"strings"

	"chronicle/internal/cache"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/repository"

	"gorm.io/gorm"
)

const maxCategoryNameLen = 100

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	cache        cache.Store
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreateCategoryInput struct {
	UserID uint
	Name   string
}

type UpdateCategoryInput struct {
	UserID     uint
	CategoryID uint
	Name       string
}

type DeleteCategoryInput struct {
	UserID     uint
	CategoryID uint
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	store cache.Store,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        store,
		isAdmin:      isAdmin,
	}
}

func (s *CategoryService) validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("Category name is required")
	}
	if len(name) > maxCategoryNameLen {
		return "", models.NewValidationError("Category name too long")
	}
	return name, nil
}

// CreateCategory adds a category. Names are unique case-insensitively; a
// duplicate is a conflict, not a validation failure.
func (s *CategoryService) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.CategoryView, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	name, err := s.validateName(in.Name)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByName(ctx, name); err == nil {
		return nil, models.NewConflictError("Category already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx, "category_create")
	return newCategoryView(category), nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.CategoryView, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Category", id)
	}
	return newCategoryView(category), nil
}

// ListCategories serves the full catalog, cached as one entry.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.CategoryView, error) {
	var views []*models.CategoryView
	err := cache.Aside(ctx, s.cache, cache.CategoriesKey, &views, cache.CategoryTTL, func() error {
		categories, err := s.categoryRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		views = make([]*models.CategoryView, 0, len(categories))
		for _, category := range categories {
			views = append(views, newCategoryView(category))
		}
		return nil
	})
	return views, err
}

// Digest serves the front-page digest: every category with its most recent
// posts, capped per category.
func (s *CategoryService) Digest(ctx context.Context) ([]*models.CategoryDigest, error) {
	var digests []*models.CategoryDigest
	err := cache.Aside(ctx, s.cache, cache.CategoriesDigestKey, &digests, cache.CategoryTTL, func() error {
		categories, err := s.categoryRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		digests = make([]*models.CategoryDigest, 0, len(categories))
		for _, category := range categories {
			posts, err := s.categoryRepo.RecentPosts(ctx, category.ID, models.DigestPostsPerCategory)
			if err != nil {
				return err
			}
			digests = append(digests, &models.CategoryDigest{
				ID:    category.ID,
				Name:  category.Name,
				Posts: newPostViews(posts),
			})
		}
		return nil
	})
	return digests, err
}

func (s *CategoryService) UpdateCategory(ctx context.Context, in UpdateCategoryInput) (*models.CategoryView, error) {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return nil, err
	}
	name, err := s.validateName(in.Name)
	if err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, notFound(err, "Category", in.CategoryID)
	}
	if existing, err := s.categoryRepo.GetByName(ctx, name); err == nil && existing.ID != category.ID {
		return nil, models.NewConflictError("Category already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	oldName := category.Name
	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx, "category_update")
	s.removeCategoryPages(ctx, "category_update", oldName, name)
	return newCategoryView(category), nil
}

// DeleteCategory soft-deletes a category and detaches its posts, which
// survive uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, in DeleteCategoryInput) error {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return err
	}
	category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return notFound(err, "Category", in.CategoryID)
	}
	if err := s.categoryRepo.SoftDelete(ctx, in.CategoryID); err != nil {
		return notFound(err, "Category", in.CategoryID)
	}
	s.invalidateCatalog(ctx, "category_delete")
	s.removeCategoryPages(ctx, "category_delete", category.Name)
	// Detached posts changed shape; drop the listings that embed them.
	for _, key := range []string{cache.PostsAllKey, cache.TrendingKey} {
		if err := s.cache.Remove(ctx, key); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
	return nil
}

func (s *CategoryService) requireAdmin(ctx context.Context, userID uint) error {
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

func (s *CategoryService) invalidateCatalog(ctx context.Context, op string) {
	for _, key := range []string{cache.CategoriesKey, cache.CategoriesDigestKey} {
		if err := s.cache.Remove(ctx, key); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
	observability.CacheInvalidations.WithLabelValues(op).Inc()
}

func (s *CategoryService) removeCategoryPages(ctx context.Context, op string, names ...string) {
	for _, name := range names {
		if err := s.cache.RemoveByPrefix(ctx, cache.CategoryPrefix(name)); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "prefix", cache.CategoryPrefix(name), "error", err)
		}
	}
	observability.CacheInvalidations.WithLabelValues(op).Inc()
}

func newCategoryView(category *models.Category) *models.CategoryView {
	return &models.CategoryView{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}
