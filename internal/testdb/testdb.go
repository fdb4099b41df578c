// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"testing"
	"time"

	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// every connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Seed inserts the given rows in order and fails the test on error.
func Seed(t testing.TB, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Omit(clause.Associations).Create(row).Error)
	}
}

func User(id uint, name string) *models.User {
	return &models.User{ID: id, Name: name, Email: name + "@example.com"}
}

func Blog(id, authorID uint, slug string) *models.Blog {
	published := time.Now()
	return &models.Blog{ID: id, AuthorID: authorID, Slug: slug, Title: slug, Content: "content of " + slug, IsPublished: true, PublishedAt: &published}
}
