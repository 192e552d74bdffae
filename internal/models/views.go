package models

import "time"

// CommentNode is a comment with its nested replies, as served inside the
// post aggregate and by the comment endpoints.
type CommentNode struct {
	ID              uint           `json:"id"`
	Content         string         `json:"content"`
	CreatedAt       time.Time      `json:"created_at"`
	UserID          uint           `json:"user_id"`
	UserName        string         `json:"user_name"`
	ParentCommentID *uint          `json:"parent_comment_id,omitempty"`
	Replies         []*CommentNode `json:"replies"`
}

// PostView is the composed read aggregate served to clients: the post joined
// with author name, category name, tag names, comment tree and like count.
type PostView struct {
	ID                  uint           `json:"id"`
	Title               string         `json:"title"`
	Content             string         `json:"content,omitempty"`
	Excerpt             string         `json:"excerpt,omitempty"`
	FeaturedImageURL    string         `json:"featured_image_url,omitempty"`
	AdditionalImageURLs []string       `json:"additional_image_urls,omitempty"`
	Views               int            `json:"views"`
	Featured            bool           `json:"featured"`
	LatestNews          bool           `json:"latest_news"`
	CreatedAt           time.Time      `json:"created_at"`
	Slug                string         `json:"slug"`
	AuthorID            uint           `json:"author_id"`
	AuthorName          string         `json:"author_name"`
	CategoryID          uint           `json:"category_id"`
	CategoryName        string         `json:"category_name"`
	Tags                []string       `json:"tags"`
	CommentsCount       int            `json:"comments_count"`
	Comments            []*CommentNode `json:"comments,omitempty"`
	LikesCount          int            `json:"likes_count"`
}

// PostSummary is the lightweight listing row (no body, no comments).
type PostSummary struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name"`
	Featured   bool      `json:"featured"`
	LatestNews bool      `json:"latest_news"`
	LikesCount int       `json:"likes_count"`
}

// CategoryView is the category DTO served by the category endpoints.
type CategoryView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryDigest is a category with its most recent posts, used by the
// multi-category front-page digest.
type CategoryDigest struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Posts []*PostView `json:"posts"`
}

// TagView is the tag DTO served by the tag endpoints.
type TagView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
