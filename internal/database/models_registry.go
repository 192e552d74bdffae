package database

import "chronicle/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM
// models, in foreign-key dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	}
}
