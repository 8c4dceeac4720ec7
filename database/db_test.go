package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	cfg := config.GetDefaultDatabaseConfig()
	cfg.Type = config.DatabaseTypeSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "folio.db")
	return cfg
}

func TestOpenMigratesSchema(t *testing.T) {
	cfg := openTestDB(t)
	db, err := Open(cfg)
	require.NoError(t, err)
	defer Close(db)

	assert.True(t, IsSQLite(db))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("projects"))
	assert.True(t, db.Migrator().HasColumn(&model.User{}, "password_hash"))
	assert.True(t, db.Migrator().HasColumn(&model.Project{}, "img_fg_path"))
	assert.True(t, db.Migrator().HasColumn(&model.Project{}, "used_technology"))

	require.NoError(t, Migrate(db), "migrating twice should be a no-op")
}

func TestUniqueIndexes(t *testing.T) {
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.Create(&model.User{Email: "a@x.com", Name: "A", Password: "h"}).Error)
	err = db.Create(&model.User{Email: "a@x.com", Name: "B", Password: "h"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	p := model.Project{Name: "Foo", Category: "API", UsedTechnology: "Go", ImgFgPath: "a", ImgBgPath: "b", GithubUrl: "https://github.com/x/foo", Description: "d"}
	require.NoError(t, db.Create(&p).Error)
	assert.False(t, p.Date.IsZero())
	dup := p
	dup.Id = 0
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	var count int64
	require.NoError(t, db.Model(&model.Project{}).Where("name = ?", "Foo").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_projects_name" (SQLSTATE 23505)`)))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: projects.name")))
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := openTestDB(t)
	cfg.Type = "mysql"
	_, err := Open(cfg)
	assert.Error(t, err)
}
