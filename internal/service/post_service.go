// Package service holds the application's business logic, sitting between
// the HTTP handlers and the repositories. Reads of published content go
// through the aggregate cache; every mutation fans out the matching
// invalidations before returning.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chronicle/internal/cache"
	"chronicle/internal/models"
	"chronicle/internal/observability"
	"chronicle/internal/repository"
	"chronicle/internal/slug"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
	maxExcerptLen = 500
)

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	cache        cache.Store
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID              uint
	Title               string
	Content             string
	Excerpt             string
	FeaturedImageURL    string
	AdditionalImageURLs []string
	CategoryID          *uint
	Tags                []string
}

type UpdatePostInput struct {
	UserID              uint
	PostID              uint
	Title               string
	Content             string
	Excerpt             string
	FeaturedImageURL    string
	AdditionalImageURLs []string
	CategoryID          *uint
	Tags                []string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type SetPostFlagInput struct {
	UserID uint
	PostID uint
	Value  bool
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	store cache.Store,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		cache:        store,
		isAdmin:      isAdmin,
	}
}

// notFound collapses a missing row into the application's not-found error;
// everything else passes through untouched.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

func (s *PostService) validateContent(title, content, excerpt string, images []string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxContentLen))
	}
	if len(excerpt) > maxExcerptLen {
		return models.NewValidationError(fmt.Sprintf("Excerpt too long (max %d characters)", maxExcerptLen))
	}
	if len(images) > models.MaxAdditionalImages {
		return models.NewValidationError(fmt.Sprintf("At most %d additional images allowed", models.MaxAdditionalImages))
	}
	if slug.Make(title, 0) == "" {
		return models.NewValidationError("Title must contain at least one letter or digit")
	}
	return nil
}

func (s *PostService) resolveCategory(ctx context.Context, id *uint) (*models.Category, error) {
	if id == nil {
		return nil, nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("Category does not exist")
		}
		return nil, err
	}
	return category, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	if err := s.validateContent(in.Title, in.Content, in.Excerpt, in.AdditionalImageURLs); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.GetOrCreateByNames(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:               in.Title,
		Content:             in.Content,
		Excerpt:             in.Excerpt,
		FeaturedImageURL:    in.FeaturedImageURL,
		AdditionalImageURLs: in.AdditionalImageURLs,
		UserID:              in.UserID,
		CategoryID:          in.CategoryID,
		Tags:                tags,
	}

	// The slug normally derives from the title alone; only a collision pulls
	// the post's own id in as a suffix. The id doesn't exist before the
	// insert, so a colliding post is created under a throwaway slug and
	// immediately re-saved with the final one.
	base := slug.Make(in.Title, 0)
	taken, err := s.postRepo.SlugExists(ctx, base, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		post.Slug = "pending-" + uuid.NewString()
	} else {
		post.Slug = base
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if taken {
		post.Slug = slug.Make(in.Title, post.ID)
		if err := s.postRepo.Save(ctx, post); err != nil {
			return nil, err
		}
	}
	post.Category = category

	s.invalidateListings(ctx, "post_create", post, category)
	return newPostView(post, false), nil
}

// GetPost serves the post aggregate, cache first. The view counter is bumped
// on every read, hit or miss alike; the cached copy keeps its stale count
// until its window lapses.
func (s *PostService) GetPost(ctx context.Context, id uint) (_ *models.PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.GetPost",
		attribute.Int("post.id", int(id)))
	defer func() { observability.EndSpan(span, err) }()

	var view models.PostView
	err = cache.Aside(ctx, s.cache, cache.PostKey(id), &view, cache.PostTTL, func() error {
		post, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "Post", id)
		}
		view = *newPostView(post, true)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpViews(ctx, view.ID)
	return &view, nil
}

// GetPostBySlug is GetPost addressed by slug. Lookup is case-insensitive.
func (s *PostService) GetPostBySlug(ctx context.Context, postSlug string) (_ *models.PostView, err error) {
	if strings.TrimSpace(postSlug) == "" {
		return nil, models.NewValidationError("Slug is required")
	}
	ctx, span := observability.StartSpan(ctx, "PostService.GetPostBySlug",
		attribute.String("post.slug", postSlug))
	defer func() { observability.EndSpan(span, err) }()

	var view models.PostView
	err = cache.Aside(ctx, s.cache, cache.PostSlugKey(postSlug), &view, cache.PostTTL, func() error {
		post, err := s.postRepo.GetBySlug(ctx, postSlug)
		if err != nil {
			return notFound(err, "Post", postSlug)
		}
		view = *newPostView(post, true)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpViews(ctx, view.ID)
	return &view, nil
}

func (s *PostService) bumpViews(ctx context.Context, id uint) {
	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		observability.Logger.WarnContext(ctx, "view increment failed", "post_id", id, "error", err)
	}
}

// ListPosts serves the full unpaginated listing, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.PostView, error) {
	var views []*models.PostView
	err := cache.Aside(ctx, s.cache, cache.PostsAllKey, &views, cache.ListTTL, func() error {
		posts, err := s.postRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		views = newPostViews(posts)
		return nil
	})
	return views, err
}

func (s *PostService) ListLatestNews(ctx context.Context, page int) (*models.Page[*models.PostView], error) {
	page, size := models.NormalizePage(page, 0, models.DefaultPageSize)
	var result models.Page[*models.PostView]
	err := cache.Aside(ctx, s.cache, cache.LatestPageKey(page), &result, cache.ListTTL, func() error {
		posts, total, err := s.postRepo.ListLatestNews(ctx, page, size)
		if err != nil {
			return err
		}
		result = *models.NewPage(newPostViews(posts), page, size, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByCategory serves one page of a category's posts. The category is
// addressed by name, matched case-insensitively.
func (s *PostService) ListByCategory(ctx context.Context, categoryName string, page int) (*models.Page[*models.PostView], error) {
	if strings.TrimSpace(categoryName) == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	page, size := models.NormalizePage(page, 0, models.DefaultPageSize)
	var result models.Page[*models.PostView]
	err := cache.Aside(ctx, s.cache, cache.CategoryPageKey(categoryName, page), &result, cache.CategoryTTL, func() error {
		category, err := s.categoryRepo.GetByName(ctx, categoryName)
		if err != nil {
			return notFound(err, "Category", categoryName)
		}
		posts, total, err := s.postRepo.ListByCategory(ctx, category.ID, page, size)
		if err != nil {
			return err
		}
		result = *models.NewPage(newPostViews(posts), page, size, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *PostService) ListMyPosts(ctx context.Context, userID uint, page int) (*models.Page[*models.PostView], error) {
	page, size := models.NormalizePage(page, 0, models.DefaultPageSize)
	var result models.Page[*models.PostView]
	err := cache.Aside(ctx, s.cache, cache.MyPostsPageKey(userID, page), &result, cache.ListTTL, func() error {
		posts, total, err := s.postRepo.ListByAuthor(ctx, userID, page, size)
		if err != nil {
			return err
		}
		result = *models.NewPage(newPostViews(posts), page, size, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListLightweight serves the summary listing used by index widgets: titles
// and authors only, no bodies.
func (s *PostService) ListLightweight(ctx context.Context, page int) (*models.Page[*models.PostSummary], error) {
	page, size := models.NormalizePage(page, 0, models.DefaultPageSize)
	var result models.Page[*models.PostSummary]
	err := cache.Aside(ctx, s.cache, cache.LightweightPageKey(page), &result, cache.ListTTL, func() error {
		posts, total, err := s.postRepo.ListPage(ctx, page, size)
		if err != nil {
			return err
		}
		summaries := make([]*models.PostSummary, 0, len(posts))
		for _, post := range posts {
			summaries = append(summaries, newPostSummary(post))
		}
		result = *models.NewPage(summaries, page, size, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchPosts matches the query against titles and bodies. Result pages are
// cached per normalized query; nothing invalidates them, they simply expire.
func (s *PostService) SearchPosts(ctx context.Context, query string, page int) (_ *models.Page[*models.PostView], err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page, size := models.NormalizePage(page, 0, models.SearchPageSize)
	ctx, span := observability.StartSpan(ctx, "PostService.SearchPosts",
		attribute.Int("page", page))
	defer func() { observability.EndSpan(span, err) }()

	var result models.Page[*models.PostView]
	err = cache.Aside(ctx, s.cache, cache.SearchPageKey(query, page), &result, cache.SearchTTL, func() error {
		posts, total, err := s.postRepo.Search(ctx, query, page, size)
		if err != nil {
			return err
		}
		result = *models.NewPage(newPostViews(posts), page, size, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TrendingPosts serves the fixed-size engagement ranking.
func (s *PostService) TrendingPosts(ctx context.Context) (_ []*models.PostView, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.TrendingPosts")
	defer func() { observability.EndSpan(span, err) }()

	var views []*models.PostView
	err = cache.Aside(ctx, s.cache, cache.TrendingKey, &views, cache.TrendingTTL, func() error {
		posts, err := s.postRepo.ListTrending(ctx, models.TrendingPageSize)
		if err != nil {
			return err
		}
		views = newPostViews(posts)
		return nil
	})
	return views, err
}

func (s *PostService) FeaturedPosts(ctx context.Context) ([]*models.PostView, error) {
	var views []*models.PostView
	err := cache.Aside(ctx, s.cache, cache.FeaturedKey, &views, cache.FeaturedTTL, func() error {
		posts, err := s.postRepo.ListFeatured(ctx)
		if err != nil {
			return err
		}
		views = newPostViews(posts)
		return nil
	})
	return views, err
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFound(err, "Post", in.PostID)
	}
	if err := s.authorize(ctx, in.UserID, post.UserID); err != nil {
		return nil, err
	}
	if err := s.validateContent(in.Title, in.Content, in.Excerpt, in.AdditionalImageURLs); err != nil {
		return nil, err
	}

	oldSlug := post.Slug
	oldCategory := post.Category

	category, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.GetOrCreateByNames(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	if in.Title != post.Title {
		base := slug.Make(in.Title, 0)
		taken, err := s.postRepo.SlugExists(ctx, base, post.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			base = slug.Make(in.Title, post.ID)
		}
		post.Slug = base
	}

	post.Title = in.Title
	post.Content = in.Content
	post.Excerpt = in.Excerpt
	post.FeaturedImageURL = in.FeaturedImageURL
	post.AdditionalImageURLs = in.AdditionalImageURLs
	post.CategoryID = in.CategoryID

	if err := s.postRepo.Save(ctx, post); err != nil {
		return nil, err
	}
	if err := s.postRepo.ReplaceTags(ctx, post, tags); err != nil {
		return nil, err
	}
	post.Tags = tags
	post.Category = category

	s.invalidateListings(ctx, "post_update", post, category, cache.PostSlugKey(oldSlug))
	if oldCategory != nil && (category == nil || oldCategory.ID != category.ID) {
		s.removePrefixes(ctx, "post_update", cache.CategoryPrefix(oldCategory.Name))
	}

	return newPostView(post, false), nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return notFound(err, "Post", in.PostID)
	}
	if err := s.authorize(ctx, in.UserID, post.UserID); err != nil {
		return err
	}
	if err := s.postRepo.SoftDelete(ctx, in.PostID); err != nil {
		return err
	}
	s.invalidateListings(ctx, "post_delete", post, post.Category)
	return nil
}

// SetFeatured toggles the curated front-page flag. Admin only.
func (s *PostService) SetFeatured(ctx context.Context, in SetPostFlagInput) error {
	return s.setFlag(ctx, in, "post_feature", func(post *models.Post) { post.Featured = in.Value },
		s.postRepo.SetFeatured)
}

// SetLatestNews toggles membership in the latest-news rail. Admin only.
func (s *PostService) SetLatestNews(ctx context.Context, in SetPostFlagInput) error {
	return s.setFlag(ctx, in, "post_latest_news", func(post *models.Post) { post.LatestNews = in.Value },
		s.postRepo.SetLatestNews)
}

func (s *PostService) setFlag(ctx context.Context, in SetPostFlagInput, op string,
	apply func(*models.Post), persist func(context.Context, uint, bool) error) error {
	if err := s.requireAdmin(ctx, in.UserID); err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return notFound(err, "Post", in.PostID)
	}
	wasFeatured, wasLatest := post.Featured, post.LatestNews
	if err := persist(ctx, in.PostID, in.Value); err != nil {
		return notFound(err, "Post", in.PostID)
	}
	// Invalidate against the union of old and new flag state, so both the
	// listing the post leaves and the one it joins are refreshed.
	apply(post)
	post.Featured = post.Featured || wasFeatured
	post.LatestNews = post.LatestNews || wasLatest
	s.invalidateListings(ctx, op, post, post.Category)
	return nil
}

// LikePost records userID's like and bumps the counter. Liking twice is a
// no-op reported through the returned flag, not an error.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) (bool, error) {
	liked, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		return false, notFound(err, "Post", postID)
	}
	if liked {
		s.invalidateByID(ctx, "post_like", postID)
	}
	return liked, nil
}

// UnlikePost removes userID's like. Removing a like that isn't there is a
// no-op reported through the returned flag.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID uint) (bool, error) {
	unliked, err := s.postRepo.Unlike(ctx, postID, userID)
	if err != nil {
		return false, notFound(err, "Post", postID)
	}
	if unliked {
		s.invalidateByID(ctx, "post_unlike", postID)
	}
	return unliked, nil
}

func (s *PostService) authorize(ctx context.Context, userID, ownerID uint) error {
	if userID == ownerID {
		return nil
	}
	admin, err := s.requireAdminCheck(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError("Not allowed to modify this post")
	}
	return nil
}

func (s *PostService) requireAdmin(ctx context.Context, userID uint) error {
	admin, err := s.requireAdminCheck(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewUnauthorizedError("Admin privileges required")
	}
	return nil
}

func (s *PostService) requireAdminCheck(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}

// invalidateListings is the write-path fan-out: it drops the post's own
// entries plus every listing that could contain it. Over-invalidation is
// accepted; a removed entry is rebuilt on the next read. Each removal stands
// alone, and failures are logged and swallowed so a flaky cache never fails
// the write that triggered it.
func (s *PostService) invalidateListings(ctx context.Context, op string, post *models.Post, category *models.Category, extraKeys ...string) {
	keys := append([]string{
		cache.PostKey(post.ID),
		cache.PostSlugKey(post.Slug),
		cache.PostsAllKey,
		cache.TrendingKey,
	}, extraKeys...)
	if post.Featured {
		keys = append(keys, cache.FeaturedKey)
	}

	prefixes := []string{
		cache.LightweightPrefix,
		cache.MyPostsPrefix(post.UserID),
	}
	if post.LatestNews {
		prefixes = append(prefixes, cache.LatestPrefix)
	}
	if category != nil {
		prefixes = append(prefixes, cache.CategoryPrefix(category.Name))
	}

	for _, key := range keys {
		if err := s.cache.Remove(ctx, key); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
	s.removePrefixes(ctx, op, prefixes...)
	observability.CacheInvalidations.WithLabelValues(op).Add(float64(len(keys)))
}

func (s *PostService) removePrefixes(ctx context.Context, op string, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := s.cache.RemoveByPrefix(ctx, prefix); err != nil {
			observability.Logger.WarnContext(ctx, "cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
	observability.CacheInvalidations.WithLabelValues(op).Add(float64(len(prefixes)))
}

// invalidateByID runs the standard write fan-out for a post addressed only
// by id. Like and unlike land here: their counter shows up in every listing
// the post appears in, so they drop the same superset as any other write.
func (s *PostService) invalidateByID(ctx context.Context, op string, postID uint) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidation lookup failed", "post_id", postID, "error", err)
		return
	}
	s.invalidateListings(ctx, op, post, post.Category)
}
