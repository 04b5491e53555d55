package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gestao-marketplace/internal/core/database"
	"gestao-marketplace/internal/domain"
)

// NewTestDB 每个测试一个独立的内存 sqlite，表结构与线上一致
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(sqlite.Open(dsn), database.Opts{LogLevel: "silent", MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, email, phone string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Maria", Email: email, Phone: phone, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}
