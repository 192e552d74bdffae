package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts one-to-many. Names are unique case-insensitively;
// listings are keyed by the lowercased name.
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Posts     []Post         `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Tag labels posts many-to-many. Tag names resolve case-insensitively on
// post create/update, so "golang" and "Golang" are the same tag.
type Tag struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Posts     []Post         `gorm:"many2many:post_tags" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
