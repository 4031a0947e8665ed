package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gabeVald/Personal-Task-Manager/internal/config"
	"github.com/gabeVald/Personal-Task-Manager/internal/models"

	"gorm.io/gorm"
)

func TestInit(t *testing.T) {
	cfg := config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "data", "gottado.db"),
		MaxOpenConns:  2,
		MaxIdleConns:  1,
		BusyTimeoutMS: 1000,
	}

	db, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// schema is migrated as part of Init
	for _, model := range []interface{}{
		&models.User{},
		&models.Task{},
		&models.File{},
		&models.StatementFile{},
		&models.Transaction{},
		&models.Log{},
	} {
		if !db.Migrator().HasTable(model) {
			t.Errorf("table for %T missing after Init", model)
		}
	}
}

func TestInit_DuplicateKeyTranslation(t *testing.T) {
	cfg := config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "gottado.db"),
		MaxOpenConns:  2,
		MaxIdleConns:  1,
		BusyTimeoutMS: 1000,
	}

	db, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if err := db.Create(&models.User{Username: "alice", PasswordHash: "x", Role: models.RoleUser}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	err = db.Create(&models.User{Username: "alice", PasswordHash: "y", Role: models.RoleUser}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate create error = %v, want gorm.ErrDuplicatedKey", err)
	}
}
