package cache

import (
	"fmt"
	"strings"
	"time"
)

// Cache key grammar. Prefixes double as invalidation scopes: every paginated
// family can be dropped as a whole via RemoveByPrefix without tracking the
// current maximum page number.
const (
	postKeyFmt         = "post:%d"
	postSlugKeyFmt     = "post:slug:%s"
	PostsAllKey        = "posts:all"
	categoryPageFmt    = "posts:category:%s:page:%d"
	categoryPrefixFmt  = "posts:category:%s:"
	latestPageFmt      = "posts:latest:page:%d"
	LatestPrefix       = "posts:latest:"
	myPostsPageFmt     = "posts:my:%d:page:%d"
	myPostsPrefixFmt   = "posts:my:%d:"
	TrendingKey        = "posts:trending"
	FeaturedKey        = "posts:featured"
	lightweightPageFmt = "posts:lightweight:page:%d"
	LightweightPrefix  = "posts:lightweight:"
	searchPageFmt      = "posts:search:%s:page:%d"
	CategoriesKey      = "categories:all"
	CategoriesDigestKey = "categories:digest"
)

// Sliding expiration windows per entry family.
const (
	PostTTL     = 5 * time.Minute
	ListTTL     = 5 * time.Minute
	TrendingTTL = 10 * time.Minute
	FeaturedTTL = 10 * time.Minute
	CategoryTTL = 10 * time.Minute
	SearchTTL   = 5 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyFmt, postID)
}

// PostSlugKey normalizes the slug to lower-case so lookups are
// case-insensitive.
func PostSlugKey(slug string) string {
	return fmt.Sprintf(postSlugKeyFmt, strings.ToLower(slug))
}

func CategoryPageKey(categoryName string, page int) string {
	return fmt.Sprintf(categoryPageFmt, strings.ToLower(categoryName), page)
}

func CategoryPrefix(categoryName string) string {
	return fmt.Sprintf(categoryPrefixFmt, strings.ToLower(categoryName))
}

func LatestPageKey(page int) string {
	return fmt.Sprintf(latestPageFmt, page)
}

func MyPostsPageKey(userID uint, page int) string {
	return fmt.Sprintf(myPostsPageFmt, userID, page)
}

func MyPostsPrefix(userID uint) string {
	return fmt.Sprintf(myPostsPrefixFmt, userID)
}

func LightweightPageKey(page int) string {
	return fmt.Sprintf(lightweightPageFmt, page)
}

func SearchPageKey(query string, page int) string {
	return fmt.Sprintf(searchPageFmt, strings.ToLower(query), page)
}

// KeyFamily reduces a key to its family for metrics labels, e.g.
// "posts:latest:page:3" -> "posts:latest" and "post:17" -> "post".
func KeyFamily(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 || parts[0] == "post" {
		return parts[0]
	}
	return parts[0] + ":" + parts[1]
}
