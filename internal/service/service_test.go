package service

import (
	"fmt"
	"testing"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试用独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", model.GenerateUUID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.ContentVersion{},
		&model.VersionBranch{},
		&model.VersionDiff{},
		&model.VersionApproval{},
		&model.ContentLock{},
		&model.VersionMerge{},
	))
	return db
}

type testEnv struct {
	db *gorm.DB

	versionRepo  *repository.VersionRepository
	branchRepo   *repository.BranchRepository
	lockRepo     *repository.LockRepository
	approvalRepo *repository.ApprovalRepository

	versions *VersionService
	reviews  *ReviewService
	merges   *MergeService
	locks    *LockService
	history  *HistoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	versionRepo := repository.NewVersionRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	diffRepo := repository.NewDiffRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	lockRepo := repository.NewLockRepository(db)
	mergeRepo := repository.NewMergeRepository(db)

	versions := NewVersionService(versionRepo, branchRepo, lockRepo, nil)

	return &testEnv{
		db:           db,
		versionRepo:  versionRepo,
		branchRepo:   branchRepo,
		lockRepo:     lockRepo,
		approvalRepo: approvalRepo,
		versions:     versions,
		reviews:      NewReviewService(versionRepo, approvalRepo),
		merges:       NewMergeService(versionRepo, branchRepo, mergeRepo, diffRepo, versions),
		locks:        NewLockService(versionRepo, lockRepo),
		history:      NewHistoryService(versionRepo, branchRepo, approvalRepo, nil),
	}
}

func (e *testEnv) mustCreateVersion(t *testing.T, content model.ContentTree, authorID uint, branch string) *model.ContentVersion {
	t.Helper()
	version, err := e.versions.CreateVersion("lesson", 1, content, authorID, "几何入门", "", nil, branch)
	require.NoError(t, err)
	return version
}
