package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyGrammar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "post:17", PostKey(17))
	assert.Equal(t, "post:slug:hello-world", PostSlugKey("Hello-World"))
	assert.Equal(t, "posts:category:tech:page:2", CategoryPageKey("Tech", 2))
	assert.Equal(t, "posts:latest:page:3", LatestPageKey(3))
	assert.Equal(t, "posts:my:9:page:1", MyPostsPageKey(9, 1))
	assert.Equal(t, "posts:lightweight:page:4", LightweightPageKey(4))
	assert.Equal(t, "posts:search:go generics:page:1", SearchPageKey("Go Generics", 1))
}

func TestPagePrefixesCoverPageKeys(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(CategoryPageKey("Tech", 7), CategoryPrefix("tech")))
	assert.True(t, strings.HasPrefix(LatestPageKey(12), LatestPrefix))
	assert.True(t, strings.HasPrefix(MyPostsPageKey(3, 5), MyPostsPrefix(3)))
	assert.True(t, strings.HasPrefix(LightweightPageKey(2), LightweightPrefix))

	// Prefixes must not bleed across families.
	assert.False(t, strings.HasPrefix(CategoryPageKey("Sports", 1), CategoryPrefix("tech")))
	assert.False(t, strings.HasPrefix(MyPostsPageKey(31, 1), MyPostsPrefix(3)))
}

func TestKeyFamily(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "post", KeyFamily(PostKey(1)))
	assert.Equal(t, "post", KeyFamily(PostSlugKey("x")))
	assert.Equal(t, "posts:all", KeyFamily(PostsAllKey))
	assert.Equal(t, "posts:latest", KeyFamily(LatestPageKey(3)))
	assert.Equal(t, "posts:trending", KeyFamily(TrendingKey))
	assert.Equal(t, "categories:all", KeyFamily(CategoriesKey))
}
