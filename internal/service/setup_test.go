package service

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/crypto"
	"quality-scanner/internal/repository"
)

type testEnv struct {
	db       *gorm.DB
	projects ProjectService
	profiles QualityProfileService
	scans    ScanService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func newTestEnv(t *testing.T, sealer crypto.Sealer) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	if sealer == nil {
		var err error
		sealer, err = crypto.NewSealer("")
		require.NoError(t, err)
	}

	projectRepo := repository.NewProjectRepository(db)
	profileRepo := repository.NewQualityProfileRepository(db)
	itemRepo := repository.NewConfigItemRepository(db)
	scanRepo := repository.NewScanRepository(db)
	phaseRepo := repository.NewPhaseResultRepository(db)

	return &testEnv{
		db:       db,
		projects: NewProjectService(projectRepo, profileRepo, itemRepo, sealer),
		profiles: NewQualityProfileService(profileRepo, itemRepo),
		scans:    NewScanService(scanRepo, phaseRepo, projectRepo),
	}
}

// useClock 每次调用前进一秒
func useClock(t *testing.T, start time.Time) {
	t.Helper()
	current := start
	old := timeNow
	timeNow = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { timeNow = old })
}
