package database

import "inkwell/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Blog{},
		&models.BlogUserBan{},
		&models.Post{},
		&models.Comment{},
	}
}
