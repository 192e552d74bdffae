package service

import (
	"context"
	"testing"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	saveFn           func(context.Context, *models.Post) error
	replaceTagsFn    func(context.Context, *models.Post, []models.Tag) error
	softDeleteFn     func(context.Context, uint) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getBySlugFn      func(context.Context, string) (*models.Post, error)
	slugExistsFn     func(context.Context, string, uint) (bool, error)
	listAllFn        func(context.Context) ([]*models.Post, error)
	listPageFn       func(context.Context, int, int) ([]*models.Post, int64, error)
	listLatestFn     func(context.Context, int, int) ([]*models.Post, int64, error)
	listFeaturedFn   func(context.Context) ([]*models.Post, error)
	listTrendingFn   func(context.Context, int) ([]*models.Post, error)
	listByCategoryFn func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	listByAuthorFn   func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	searchFn         func(context.Context, string, int, int) ([]*models.Post, int64, error)
	incrementViewsFn func(context.Context, uint) error
	setFeaturedFn    func(context.Context, uint, bool) error
	setLatestFn      func(context.Context, uint, bool) error
	likeFn           func(context.Context, uint, uint) (bool, error)
	unlikeFn         func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) Save(ctx context.Context, p *models.Post) error   { return s.saveFn(ctx, p) }
func (s *postRepoStub) ReplaceTags(ctx context.Context, p *models.Post, tags []models.Tag) error {
	return s.replaceTagsFn(ctx, p, tags)
}
func (s *postRepoStub) SoftDelete(ctx context.Context, id uint) error { return s.softDeleteFn(ctx, id) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return s.slugExistsFn(ctx, slug, excludeID)
}
func (s *postRepoStub) ListAll(ctx context.Context) ([]*models.Post, error) { return s.listAllFn(ctx) }
func (s *postRepoStub) ListPage(ctx context.Context, page, size int) ([]*models.Post, int64, error) {
	return s.listPageFn(ctx, page, size)
}
func (s *postRepoStub) ListLatestNews(ctx context.Context, page, size int) ([]*models.Post, int64, error) {
	return s.listLatestFn(ctx, page, size)
}
func (s *postRepoStub) ListFeatured(ctx context.Context) ([]*models.Post, error) {
	return s.listFeaturedFn(ctx)
}
func (s *postRepoStub) ListTrending(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.listTrendingFn(ctx, limit)
}
func (s *postRepoStub) ListByCategory(ctx context.Context, categoryID uint, page, size int) ([]*models.Post, int64, error) {
	return s.listByCategoryFn(ctx, categoryID, page, size)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, userID uint, page, size int) ([]*models.Post, int64, error) {
	return s.listByAuthorFn(ctx, userID, page, size)
}
func (s *postRepoStub) Search(ctx context.Context, query string, page, size int) ([]*models.Post, int64, error) {
	return s.searchFn(ctx, query, page, size)
}
func (s *postRepoStub) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}
func (s *postRepoStub) SetFeatured(ctx context.Context, id uint, v bool) error {
	return s.setFeaturedFn(ctx, id, v)
}
func (s *postRepoStub) SetLatestNews(ctx context.Context, id uint, v bool) error {
	return s.setLatestFn(ctx, id, v)
}
func (s *postRepoStub) Like(ctx context.Context, postID, userID uint) (bool, error) {
	return s.likeFn(ctx, postID, userID)
}
func (s *postRepoStub) Unlike(ctx context.Context, postID, userID uint) (bool, error) {
	return s.unlikeFn(ctx, postID, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		saveFn:        func(context.Context, *models.Post) error { return nil },
		replaceTagsFn: func(context.Context, *models.Post, []models.Tag) error { return nil },
		softDeleteFn:  func(context.Context, uint) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "t", Slug: "t", UserID: 1}, nil
		},
		getBySlugFn: func(_ context.Context, slug string) (*models.Post, error) {
			return &models.Post{ID: 1, Title: "t", Slug: slug, UserID: 1}, nil
		},
		slugExistsFn: func(context.Context, string, uint) (bool, error) { return false, nil },
		listAllFn:    func(context.Context) ([]*models.Post, error) { return nil, nil },
		listPageFn: func(context.Context, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		listLatestFn: func(context.Context, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		listFeaturedFn: func(context.Context) ([]*models.Post, error) { return nil, nil },
		listTrendingFn: func(context.Context, int) ([]*models.Post, error) { return nil, nil },
		listByCategoryFn: func(context.Context, uint, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		listByAuthorFn: func(context.Context, uint, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		searchFn: func(context.Context, string, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		incrementViewsFn: func(context.Context, uint) error { return nil },
		setFeaturedFn:    func(context.Context, uint, bool) error { return nil },
		setLatestFn:      func(context.Context, uint, bool) error { return nil },
		likeFn:           func(context.Context, uint, uint) (bool, error) { return true, nil },
		unlikeFn:         func(context.Context, uint, uint) (bool, error) { return true, nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn      func(context.Context, *models.Category) error
	getByIDFn     func(context.Context, uint) (*models.Category, error)
	getByNameFn   func(context.Context, string) (*models.Category, error)
	listAllFn     func(context.Context) ([]*models.Category, error)
	updateFn      func(context.Context, *models.Category) error
	softDeleteFn  func(context.Context, uint) error
	postCountFn   func(context.Context, uint) (int64, error)
	recentPostsFn func(context.Context, uint, int) ([]*models.Post, error)
}

func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return s.getByNameFn(ctx, name)
}
func (s *categoryRepoStub) ListAll(ctx context.Context) ([]*models.Category, error) {
	return s.listAllFn(ctx)
}
func (s *categoryRepoStub) Update(ctx context.Context, c *models.Category) error {
	return s.updateFn(ctx, c)
}
func (s *categoryRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *categoryRepoStub) PostCount(ctx context.Context, id uint) (int64, error) {
	return s.postCountFn(ctx, id)
}
func (s *categoryRepoStub) RecentPosts(ctx context.Context, id uint, limit int) ([]*models.Post, error) {
	return s.recentPostsFn(ctx, id, limit)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(_ context.Context, c *models.Category) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Tech"}, nil
		},
		getByNameFn: func(context.Context, string) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listAllFn:     func(context.Context) ([]*models.Category, error) { return nil, nil },
		updateFn:      func(context.Context, *models.Category) error { return nil },
		softDeleteFn:  func(context.Context, uint) error { return nil },
		postCountFn:   func(context.Context, uint) (int64, error) { return 0, nil },
		recentPostsFn: func(context.Context, uint, int) ([]*models.Post, error) { return nil, nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	createFn     func(context.Context, *models.Tag) error
	getByIDFn    func(context.Context, uint) (*models.Tag, error)
	listAllFn    func(context.Context) ([]*models.Tag, error)
	getByNameFn  func(context.Context, string) (*models.Tag, error)
	getOrMakeFn  func(context.Context, []string) ([]models.Tag, error)
	postsByTagFn func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	softDeleteFn func(context.Context, uint) error
}

func (s *tagRepoStub) Create(ctx context.Context, tag *models.Tag) error {
	return s.createFn(ctx, tag)
}
func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *tagRepoStub) ListAll(ctx context.Context) ([]*models.Tag, error) { return s.listAllFn(ctx) }
func (s *tagRepoStub) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.getByNameFn(ctx, name)
}
func (s *tagRepoStub) GetOrCreateByNames(ctx context.Context, names []string) ([]models.Tag, error) {
	return s.getOrMakeFn(ctx, names)
}
func (s *tagRepoStub) PostsByTag(ctx context.Context, tagID uint, page, size int) ([]*models.Post, int64, error) {
	return s.postsByTagFn(ctx, tagID, page, size)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		createFn: func(_ context.Context, tag *models.Tag) error { tag.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Tag, error) {
			return &models.Tag{ID: id, Name: "golang"}, nil
		},
		listAllFn:   func(context.Context) ([]*models.Tag, error) { return nil, nil },
		getByNameFn: func(context.Context, string) (*models.Tag, error) { return nil, gorm.ErrRecordNotFound },
		getOrMakeFn: func(context.Context, []string) ([]models.Tag, error) { return nil, nil },
		postsByTagFn: func(context.Context, uint, int, int) ([]*models.Post, int64, error) {
			return nil, 0, nil
		},
		softDeleteFn: func(context.Context, uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	softDeleteFn func(context.Context, uint) error
	updateFn     func(context.Context, uint, string) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) SoftDelete(ctx context.Context, id uint) error {
	return s.softDeleteFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, id uint, content string) error {
	return s.updateFn(ctx, id, content)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 42; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, PostID: 1, Content: "hi"}, nil
		},
		listByPostFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		softDeleteFn: func(context.Context, uint) error { return nil },
		updateFn:     func(context.Context, uint, string) error { return nil },
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation), "expected validation error, got %v", err)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound), "expected not-found error, got %v", err)
}

func adminIs(admin bool) func(context.Context, uint) (bool, error) {
	return func(context.Context, uint) (bool, error) { return admin, nil }
}
