package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a reader comment on a post. Comments form a tree through
// ParentCommentID; a parent always belongs to the same post.
type Comment struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Content         string         `gorm:"size:1000;not null" json:"content"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Commenter       User           `gorm:"foreignKey:UserID" json:"-"`
	PostID          uint           `gorm:"not null;index" json:"post_id"`
	ParentCommentID *uint          `gorm:"index" json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
