// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaxAdditionalImages is the number of additional image URLs a post may carry
// on top of its featured image.
const MaxAdditionalImages = 3

// Post represents a published article. Posts are never physically removed;
// DeletedAt excludes them from all subsequent reads.
type Post struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Title               string         `gorm:"size:200;not null" json:"title"`
	Content             string         `gorm:"type:text;not null" json:"content"`
	Excerpt             string         `gorm:"size:500" json:"excerpt,omitempty"`
	FeaturedImageURL    string         `json:"featured_image_url,omitempty"`
	AdditionalImageURLs pq.StringArray `gorm:"type:text[]" json:"additional_image_urls,omitempty"`
	// Slug is the stable external identifier, derived from the title and
	// suffixed with the post's own ID to stay unique across identical titles.
	Slug       string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Views      int    `gorm:"not null;default:0" json:"views"`
	Featured   bool   `gorm:"not null;default:false;index" json:"featured"`
	LatestNews bool   `gorm:"not null;default:false;index" json:"latest_news"`
	// LikesCount is denormalized; it is adjusted in the same transaction as
	// the like row insert/delete so the two never diverge.
	LikesCount int `gorm:"not null;default:0" json:"likes_count"`
	// CommentsCount is read-only, filled by a count subquery on list and
	// aggregate reads. It is not a column.
	CommentsCount int            `gorm:"->;-:migration" json:"comments_count"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	Author        User           `gorm:"foreignKey:UserID" json:"-"`
	CategoryID    *uint          `gorm:"index" json:"category_id,omitempty"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"-"`
	Tags          []Tag          `gorm:"many2many:post_tags" json:"-"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
