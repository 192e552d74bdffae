package service

import (
	"context"
	"fmt"

	"chronicle/internal/cache"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/repository"
)

const maxCommentLen = 1000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	cache       cache.Store
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

type CreateCommentInput struct {
	UserID          uint
	PostID          uint
	Content         string
	ParentCommentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	store cache.Store,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		cache:       store,
		isAdmin:     isAdmin,
	}
}

// CreateComment adds a comment, optionally as a reply. A reply's parent must
// exist, be live, and belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentNode, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFound(err, "Post", in.PostID)
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, notFound(err, "Comment", *in.ParentCommentID)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:         in.Content,
		UserID:          in.UserID,
		PostID:          in.PostID,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	// Reload for the commenter join the response carries.
	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	s.invalidatePost(ctx, "comment_create", post)

	return &models.CommentNode{
		ID:              created.ID,
		Content:         created.Content,
		CreatedAt:       created.CreatedAt,
		UserID:          created.UserID,
		UserName:        created.Commenter.DisplayName(),
		ParentCommentID: created.ParentCommentID,
		Replies:         []*models.CommentNode{},
	}, nil
}

// GetComment returns one comment as a tree node, the same shape the post
// tree carries. The builder roots whatever it is given, so a reply's parent
// pointer is detached for the build and restored on the node; its own
// replies are not loaded.
func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.CommentNode, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Comment", id)
	}
	row := *comment
	row.ParentCommentID = nil
	tree := BuildCommentTree([]*models.Comment{&row})
	if len(tree) == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	node := tree[0]
	node.ParentCommentID = comment.ParentCommentID
	return node, nil
}

// PostComments returns the assembled comment tree for a post, uncached: it
// backs moderation and the fallback path when the aggregate is bypassed.
func (s *CommentService) PostComments(ctx context.Context, postID uint) ([]*models.CommentNode, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, notFound(err, "Post", postID)
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) error {
	if in.Content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	if err := s.authorize(ctx, in.UserID, comment.UserID); err != nil {
		return err
	}
	if err := s.commentRepo.Update(ctx, in.CommentID, in.Content); err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	s.invalidateByPostID(ctx, "comment_update", comment.PostID)
	return nil
}

// DeleteComment soft-deletes one comment. Its replies stay in the table but
// disappear from the assembled tree along with it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	if err := s.authorize(ctx, in.UserID, comment.UserID); err != nil {
		return err
	}
	if err := s.commentRepo.SoftDelete(ctx, in.CommentID); err != nil {
		return notFound(err, "Comment", in.CommentID)
	}
	s.invalidateByPostID(ctx, "comment_delete", comment.PostID)
	return nil
}

func (s *CommentService) authorize(ctx context.Context, userID, ownerID uint) error {
	if userID == ownerID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("Not allowed to modify this comment")
}

func (s *CommentService) invalidateByPostID(ctx context.Context, op string, postID uint) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidation lookup failed", "post_id", postID, "error", err)
		return
	}
	s.invalidatePost(ctx, op, post)
}

// invalidatePost drops the entries a comment mutation makes stale: the
// post's own aggregate and the listings carrying its comment count.
func (s *CommentService) invalidatePost(ctx context.Context, op string, post *models.Post) {
	for _, key := range []string{
		cache.PostKey(post.ID),
		cache.PostSlugKey(post.Slug),
		cache.PostsAllKey,
		cache.TrendingKey,
	} {
		if err := s.cache.Remove(ctx, key); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
	observability.CacheInvalidations.WithLabelValues(op).Inc()
}
