package service

import (
	"context"
	"testing"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersionHistoryPaged(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.mustCreateVersion(t, model.ContentTree{"n": float64(i)}, 10, "")
	}

	versions, total, err := env.history.GetVersionHistory("lesson", 1, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, versions, 2)
	// 新版本在前
	assert.Equal(t, 5, versions[0].VersionNumber)
	assert.Equal(t, 4, versions[1].VersionNumber)

	versions, _, err = env.history.GetVersionHistory("lesson", 1, "", 3, 2)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)

	// 非法分页参数回退到默认值
	versions, total, err = env.history.GetVersionHistory("lesson", 1, "", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, versions, 5)
}

func TestGetVersionHistoryBranchFilter(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.CreateBranch("lesson", 1, "feature", 10, "", nil, nil)
	require.NoError(t, err)
	env.mustCreateVersion(t, model.ContentTree{"title": "b"}, 10, "feature")

	versions, total, err := env.history.GetVersionHistory("lesson", 1, "feature", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, versions, 1)
	assert.Equal(t, "feature", versions[0].Branch)

	// branch 为空时跨分支
	_, total, err = env.history.GetVersionHistory("lesson", 1, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestGetCurrentVersionRequiresPublished(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.history.GetCurrentVersion(context.Background(), "lesson", 1)
	assert.ErrorIs(t, err, util.ErrVersionNotFound)

	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	// 仅有草稿时仍没有当前生效版本
	_, err = env.history.GetCurrentVersion(context.Background(), "lesson", 1)
	assert.ErrorIs(t, err, util.ErrVersionNotFound)

	v.Status = model.StatusPublished
	require.NoError(t, env.versionRepo.Save(v))

	current, err := env.history.GetCurrentVersion(context.Background(), "lesson", 1)
	require.NoError(t, err)
	assert.Equal(t, v.ID, current.ID)
}

func TestGetCurrentVersionPicksHighestPublished(t *testing.T) {
	env := newTestEnv(t)

	v1 := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")
	v2 := env.mustCreateVersion(t, model.ContentTree{"title": "b"}, 10, "")
	env.mustCreateVersion(t, model.ContentTree{"title": "c"}, 10, "")

	v1.Status = model.StatusPublished
	require.NoError(t, env.versionRepo.Save(v1))
	v2.Status = model.StatusPublished
	require.NoError(t, env.versionRepo.Save(v2))

	// 取 main 上版本号最大的已发布版本，草稿不参与
	current, err := env.history.GetCurrentVersion(context.Background(), "lesson", 1)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)
}

func TestGetPendingReviews(t *testing.T) {
	env := newTestEnv(t)

	v1 := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")
	_, err := env.versions.SubmitForReview(v1.ID, "")
	require.NoError(t, err)

	orgID := uint(7)
	other, err := env.versions.CreateVersion("course", 2, model.ContentTree{"title": "b"}, 10, "课程", "", &orgID, "")
	require.NoError(t, err)
	_, err = env.versions.SubmitForReview(other.ID, "")
	require.NoError(t, err)

	all, err := env.history.GetPendingReviews("", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lessons, err := env.history.GetPendingReviews("lesson", nil)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, v1.ID, lessons[0].ID)

	byOrg, err := env.history.GetPendingReviews("", &orgID)
	require.NoError(t, err)
	require.Len(t, byOrg, 1)
	assert.Equal(t, other.ID, byOrg[0].ID)
}

func TestGetReviewerQueue(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)
	_, err = env.reviews.AssignReviewer(v.ID, 20)
	require.NoError(t, err)

	items, err := env.history.GetReviewerQueue(20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, v.ID, items[0].Approval.VersionID)
	require.NotNil(t, items[0].Version)
	assert.Equal(t, v.ID, items[0].Version.ID)

	// 做出决定后离开待办队列
	_, err = env.reviews.StartReview(v.ID, 20)
	require.NoError(t, err)
	_, err = env.reviews.Approve(v.ID, 20, "")
	require.NoError(t, err)

	items, err = env.history.GetReviewerQueue(20)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetHistorySummary(t *testing.T) {
	env := newTestEnv(t)

	v1 := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")
	v2 := env.mustCreateVersion(t, model.ContentTree{"title": "b"}, 10, "")
	env.mustCreateVersion(t, model.ContentTree{"title": "c"}, 10, "")

	v1.Status = model.StatusPublished
	require.NoError(t, env.versionRepo.Save(v1))
	v2.Status = model.StatusPendingReview
	require.NoError(t, env.versionRepo.Save(v2))

	_, err := env.versions.CreateBranch("lesson", 1, "feature", 10, "", nil, nil)
	require.NoError(t, err)

	summary, err := env.history.GetHistorySummary("lesson", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalVersions)
	assert.Equal(t, int64(1), summary.PublishedCount)
	assert.Equal(t, int64(1), summary.DraftCount)
	assert.Equal(t, int64(1), summary.InReviewCount)
	// feature 加上补建的 main 记录
	assert.Equal(t, int64(2), summary.BranchCount)
	assert.Equal(t, 3, summary.LatestNumber)
}

func TestGetBranches(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	feature, err := env.versions.CreateBranch("lesson", 1, "feature", 10, "", nil, nil)
	require.NoError(t, err)
	_, err = env.versions.CreateBranch("lesson", 1, "rewrite", 10, "", nil, nil)
	require.NoError(t, err)

	_, err = env.versions.CloseBranch(feature.ID)
	require.NoError(t, err)

	active, err := env.history.GetBranches("lesson", 1, false)
	require.NoError(t, err)
	assert.Len(t, active, 2) // main + rewrite

	all, err := env.history.GetBranches("lesson", 1, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
