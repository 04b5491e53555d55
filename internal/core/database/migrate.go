package database

import (
	"gorm.io/gorm"

	"gestao-marketplace/internal/domain"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Product{})
}
