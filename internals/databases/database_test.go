package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateCreatesAllTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	for _, table := range []string{
		"branches", "semesters", "sections", "subjects", "documents",
		"users", "email_confirmations", "refresh_tokens", "token_blacklist", "client_sessions",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, TunePool(db))
}

func TestPingWithoutDB(t *testing.T) {
	assert.Error(t, Ping(context.Background(), nil))
}
