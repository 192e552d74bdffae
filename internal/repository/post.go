// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"chronicle/internal/models"
	"chronicle/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Save(ctx context.Context, post *models.Post) error
	ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	SoftDelete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListAll(ctx context.Context) ([]*models.Post, error)
	ListPage(ctx context.Context, page, size int) ([]*models.Post, int64, error)
	ListLatestNews(ctx context.Context, page, size int) ([]*models.Post, int64, error)
	ListFeatured(ctx context.Context) ([]*models.Post, error)
	ListTrending(ctx context.Context, limit int) ([]*models.Post, error)
	ListByCategory(ctx context.Context, categoryID uint, page, size int) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, userID uint, page, size int) ([]*models.Post, int64, error)
	Search(ctx context.Context, query string, page, size int) ([]*models.Post, int64, error)
	IncrementViews(ctx context.Context, id uint) error
	SetFeatured(ctx context.Context, id uint, featured bool) error
	SetLatestNews(ctx context.Context, id uint, latest bool) error
	Like(ctx context.Context, postID, userID uint) (bool, error)
	Unlike(ctx context.Context, postID, userID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	return r.db.WithContext(ctx).Omit("Tags", "Comments", "Author", "Category").Save(post).Error
}

func (r *postRepository) ReplaceTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags)
}

// SoftDelete marks the post deleted and detaches it from its category, in one
// transaction. The row itself is never removed.
func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("id = ?", id).
			UpdateColumn("category_id", gorm.Expr("NULL")).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

// withCommentsCount adds the non-deleted comment count as a select alias.
func (r *postRepository) withCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count")
}

// aggregatePreloads loads everything the post aggregate joins: author,
// category, tag names and the full (non-deleted) comment set with
// commenters, ordered oldest first so the tree builder preserves it.
func (r *postRepository) aggregatePreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Commenter")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	err := r.aggregatePreloads(r.withCommentsCount(r.db.WithContext(ctx))).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer observability.TrackQuery("read", "posts")()
	var post models.Post
	err := r.aggregatePreloads(r.withCommentsCount(r.db.WithContext(ctx))).
		Where("LOWER(slug) = ?", strings.ToLower(slug)).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("LOWER(slug) = ?", strings.ToLower(slug))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.withCommentsCount(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListPage(ctx context.Context, page, size int) ([]*models.Post, int64, error) {
	return r.listPaged(ctx, r.db.WithContext(ctx).Model(&models.Post{}), page, size)
}

func (r *postRepository) ListLatestNews(ctx context.Context, page, size int) ([]*models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("latest_news = ?", true)
	return r.listPaged(ctx, q, page, size)
}

func (r *postRepository) ListFeatured(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.withCommentsCount(r.db.WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Where("featured = ?", true).
		Order("posts.created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ListTrending ranks by engagement score: each comment counts as two views.
func (r *postRepository) ListTrending(ctx context.Context, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.withCommentsCount(r.db.WithContext(ctx)).
		Preload("Author").
		Order("(2 * (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) + posts.views) DESC, posts.created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, page, size int) ([]*models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("category_id = ?", categoryID)
	return r.listPaged(ctx, q, page, size)
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint, page, size int) ([]*models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID)
	return r.listPaged(ctx, q, page, size)
}

func (r *postRepository) Search(ctx context.Context, query string, page, size int) ([]*models.Post, int64, error) {
	like := "%" + query + "%"
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("title ILIKE ? OR content ILIKE ?", like, like)
	return r.listPaged(ctx, q, page, size)
}

// listPaged counts q's total matches and loads one page with the aggregate
// joins, newest first. page is 1-based.
func (r *postRepository) listPaged(ctx context.Context, q *gorm.DB, page, size int) ([]*models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	err := r.withCommentsCount(q.Session(&gorm.Session{})).
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

// IncrementViews bumps the view counter in place. Deliberately no cache
// interaction: the cached aggregate keeps the old count until it expires.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *postRepository) SetFeatured(ctx context.Context, id uint, featured bool) error {
	return r.setFlag(ctx, id, "featured", featured)
}

func (r *postRepository) SetLatestNews(ctx context.Context, id uint, latest bool) error {
	return r.setFlag(ctx, id, "latest_news", latest)
}

func (r *postRepository) setFlag(ctx context.Context, id uint, column string, value bool) error {
	defer observability.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Like inserts the like row and bumps the denormalized counter in one
// transaction, so the two never diverge. Returns false without touching
// anything when the pair already exists.
func (r *postRepository) Like(ctx context.Context, postID, userID uint) (bool, error) {
	defer observability.TrackQuery("create", "likes")()

	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	return liked, err
}

// Unlike removes the like row (hard delete) and decrements the counter in
// one transaction. Returns false when there was nothing to remove.
func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	defer observability.TrackQuery("delete", "likes")()

	unliked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
			return err
		}
		unliked = true
		return nil
	})
	return unliked, err
}
