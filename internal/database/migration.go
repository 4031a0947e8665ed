package database

import (
	"fmt"

	"github.com/gabeVald/Personal-Task-Manager/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.File{},
		&models.StatementFile{},
		&models.Transaction{},
		&models.Log{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
