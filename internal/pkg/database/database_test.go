package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/config"
)

func TestInitSqliteWithMigrate(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:      "sqlite",
		Database:    filepath.Join(t.TempDir(), "scanner.db"),
		LogLevel:    "silent",
		AutoMigrate: true,
	}
	require.NoError(t, Init(cfg))
	t.Cleanup(func() { _ = Close() })

	db := GetDB()
	require.NotNil(t, db)
	for _, table := range []string{
		model.ProjectTableName,
		model.ScanTableName,
		model.PhaseResultTableName,
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasTable(&model.QualityProfile{}))
	assert.True(t, db.Migrator().HasTable(&model.ConfigItem{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
