package repository

import (
	"context"

	"chronicle/internal/models"
	"chronicle/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	SoftDelete(ctx context.Context, id uint) error
	Update(ctx context.Context, id uint, content string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("create", "comments")()
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observability.TrackQuery("read", "comments")()
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Commenter").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns the post's live comments oldest first, the order the
// tree builder expects.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Commenter").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// SoftDelete hides the comment. Replies keep their parent_comment_id and
// simply fall out of the assembled tree.
func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "comments")()
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) Update(ctx context.Context, id uint, content string) error {
	defer observability.TrackQuery("update", "comments")()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		UpdateColumn("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
