package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/middleware"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	router *gin.Engine
	claims *util.Claims

	versions   *service.VersionService
	locks      *service.LockService
	branchRepo *repository.BranchRepository
	storageDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	versionRepo := repository.NewVersionRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	diffRepo := repository.NewDiffRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	lockRepo := repository.NewLockRepository(db)
	mergeRepo := repository.NewMergeRepository(db)

	versions := service.NewVersionService(versionRepo, branchRepo, lockRepo, nil)
	reviews := service.NewReviewService(versionRepo, approvalRepo)
	merges := service.NewMergeService(versionRepo, branchRepo, mergeRepo, diffRepo, versions)
	locks := service.NewLockService(versionRepo, lockRepo)
	history := service.NewHistoryService(versionRepo, branchRepo, approvalRepo, nil)

	storageDir := t.TempDir()
	snapshots, err := service.NewSnapshotService(&config.Config{
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: storageDir},
	})
	require.NoError(t, err)

	s := &testServer{
		versions:   versions,
		locks:      locks,
		branchRepo: branchRepo,
		storageDir: storageDir,
		// 默认以作者身份登录
		claims: &util.Claims{UserID: 10, Role: model.Author},
	}

	versionCtrl := NewVersionController(versions, snapshots)
	reviewCtrl := NewReviewController(reviews)
	mergeCtrl := NewMergeController(merges)
	lockCtrl := NewLockController(locks)
	historyCtrl := NewHistoryController(history)

	router := gin.New()
	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		if s.claims != nil {
			c.Set("user", s.claims)
		}
	})
	{
		api.POST("/versions", versionCtrl.CreateVersion)
		api.GET("/versions/:id", versionCtrl.GetVersion)
		api.PUT("/versions/:id/content", versionCtrl.UpdateContent)
		api.POST("/versions/:id/submit", versionCtrl.SubmitForReview)
		api.GET("/versions/:id/export", versionCtrl.ExportVersion)

		review := api.Group("/versions/:id/review")
		review.Use(middleware.RoleMiddleware(model.Reviewer))
		{
			review.POST("/start", reviewCtrl.StartReview)
			review.POST("/approve", reviewCtrl.Approve)
		}
		api.POST("/versions/:id/reviewers", middleware.RoleMiddleware(model.Reviewer), reviewCtrl.AssignReviewer)

		api.POST("/merges", mergeCtrl.MergeBranches)
		api.GET("/diffs", mergeCtrl.GetDiff)

		api.GET("/entities/:type/:id/history", historyCtrl.GetVersionHistory)

		api.POST("/locks/:type/:id", lockCtrl.AcquireLock)
		api.DELETE("/locks/:id", lockCtrl.ReleaseLock)
	}
	s.router = router
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if dest != nil {
		require.NoError(t, json.Unmarshal(resp.Data, dest))
	}
}

func TestCreateAndGetVersionHTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/versions", gin.H{
		"entityType": "lesson",
		"entityId":   1,
		"title":      "几何入门",
		"content":    gin.H{"title": "几何入门", "sections": gin.H{"intro": "..."}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.ContentVersion
	decodeData(t, w, &created)
	require.Equal(t, 1, created.VersionNumber)
	require.Equal(t, "main", created.Branch)
	require.Equal(t, model.StatusDraft, created.Status)
	require.Equal(t, uint(10), created.CreatedBy)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/versions/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/versions/9999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// 缺少必填字段
	w = s.do(t, http.MethodPost, "/api/versions", gin.H{"entityType": "lesson"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitTransitionErrorsHTTP(t *testing.T) {
	s := newTestServer(t)

	v, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "a"}, 10, "t", "", nil, "")
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/submit", v.ID), gin.H{"changelog": "首次提交"})
	require.Equal(t, http.StatusOK, w.Code)

	// 重复提交被状态机拒绝
	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/submit", v.ID), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateContentLockConflictHTTP(t *testing.T) {
	s := newTestServer(t)

	v, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "a"}, 10, "t", "", nil, "")
	require.NoError(t, err)

	// 用户 2 持锁
	lock, err := s.locks.AcquireLock("lesson", 1, 2, "编辑中", 30)
	require.NoError(t, err)

	w := s.do(t, http.MethodPut, fmt.Sprintf("/api/versions/%d/content", v.ID),
		gin.H{"content": gin.H{"title": "b"}})
	require.Equal(t, http.StatusConflict, w.Code)

	// 非持有者释放锁
	w = s.do(t, http.MethodDelete, "/api/locks/"+lock.ID, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/locks/nonexistent", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewerRoleGuardHTTP(t *testing.T) {
	s := newTestServer(t)

	v, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "a"}, 10, "t", "", nil, "")
	require.NoError(t, err)
	_, err = s.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)

	// 作者无权分配审核人
	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/reviewers", v.ID), gin.H{"reviewerId": 20})
	require.Equal(t, http.StatusForbidden, w.Code)

	s.claims = &util.Claims{UserID: 20, Role: model.Reviewer}

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/reviewers", v.ID), gin.H{"reviewerId": 20})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/review/start", v.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/versions/%d/review/approve", v.ID), gin.H{"notes": "合格"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMergeBranchesHTTP(t *testing.T) {
	s := newTestServer(t)

	_, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"x": float64(9)}, 10, "主干", "", nil, "")
	require.NoError(t, err)
	feature, err := s.versions.CreateBranch("lesson", 1, "feature", 10, "", nil, nil)
	require.NoError(t, err)
	_, err = s.versions.CreateVersion("lesson", 1, model.ContentTree{"x": float64(1)}, 10, "分支", "", nil, "feature")
	require.NoError(t, err)
	main, err := s.branchRepo.FindByName("lesson", 1, util.MainBranch)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/merges", gin.H{
		"sourceBranchId": feature.ID,
		"targetBranchId": main.ID,
		"strategy":       "manual",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var merge model.VersionMerge
	decodeData(t, w, &merge)
	require.Equal(t, model.MergeConflicts, merge.Status)
	require.Len(t, merge.Conflicts, 1)

	// 未知策略
	w = s.do(t, http.MethodPost, "/api/merges", gin.H{
		"sourceBranchId": feature.ID,
		"targetBranchId": main.ID,
		"strategy":       "rebase",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDiffHTTP(t *testing.T) {
	s := newTestServer(t)

	v1, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "a"}, 10, "t", "", nil, "")
	require.NoError(t, err)
	v2, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "b"}, 10, "t", "", nil, "")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/diffs?source=%d&target=%d", v1.ID, v2.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var diff model.VersionDiff
	decodeData(t, w, &diff)
	require.Len(t, diff.Changes, 1)
	require.Equal(t, "title", diff.Changes[0].Path)

	w = s.do(t, http.MethodGet, "/api/diffs?source=1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportVersionHTTP(t *testing.T) {
	s := newTestServer(t)

	v, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"title": "a"}, 10, "t", "", nil, "")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/versions/%d/export", v.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		URL string `json:"url"`
	}
	decodeData(t, w, &data)
	require.Contains(t, data.URL, "/exports/snapshots/lesson/1/v1-")

	// 快照文件落在本地存储目录
	relative := strings.TrimPrefix(data.URL, "/exports/")
	payload, err := os.ReadFile(filepath.Join(s.storageDir, relative))
	require.NoError(t, err)
	require.Contains(t, string(payload), `"entityType": "lesson"`)
}

func TestVersionHistoryHTTP(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		_, err := s.versions.CreateVersion("lesson", 1, model.ContentTree{"n": float64(i)}, 10, "t", "", nil, "")
		require.NoError(t, err)
	}

	w := s.do(t, http.MethodGet, "/api/entities/lesson/1/history?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page util.PageResponse
	decodeData(t, w, &page)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.Limit)
}
