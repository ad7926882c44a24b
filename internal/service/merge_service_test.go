package service

import (
	"testing"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/treediff"
	"edu_content_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDivergedBranches main 上 {"x":9,"z":3}，feature 上 {"x":1,"y":2}，
// x 字段冲突
func setupDivergedBranches(t *testing.T, env *testEnv) (main, feature *model.VersionBranch) {
	t.Helper()

	env.mustCreateVersion(t, model.ContentTree{"x": float64(9), "z": float64(3)}, 10, "")

	feature, err := env.versions.CreateBranch("lesson", 1, "feature", 11, "", nil, nil)
	require.NoError(t, err)
	env.mustCreateVersion(t, model.ContentTree{"x": float64(1), "y": float64(2)}, 11, "feature")

	main, err = env.branchRepo.FindByName("lesson", 1, util.MainBranch)
	require.NoError(t, err)
	return main, feature
}

func TestMergeManualLeavesConflicts(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyManual)
	require.NoError(t, err)
	assert.Equal(t, model.MergeConflicts, merge.Status)
	require.Len(t, merge.Conflicts, 1)
	assert.Equal(t, "x", merge.Conflicts[0].Path)
	assert.Nil(t, merge.ResultVersionID)

	// main 上没有生成新版本，feature 也未被标记合并
	latest, err := env.versionRepo.GetLatest("lesson", 1, util.MainBranch)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.VersionNumber)

	reloaded, err := env.branchRepo.FindByID(feature.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.MergedIntoBranchID)
}

func TestMergeAutoResolvesFieldLevel(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyAuto)
	require.NoError(t, err)
	assert.Equal(t, model.MergeCompleted, merge.Status)
	require.NotNil(t, merge.ResultVersionID)

	result, err := env.versionRepo.FindByID(*merge.ResultVersionID)
	require.NoError(t, err)
	assert.Equal(t, util.MainBranch, result.Branch)
	assert.Equal(t, 2, result.VersionNumber)
	// 冲突字段保留目标侧，其余字段并入
	assert.Equal(t, model.ContentTree{"x": float64(9), "y": float64(2), "z": float64(3)}, result.Content)

	// 源分支被标记为已合并
	reloaded, err := env.branchRepo.FindByID(feature.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.MergedIntoBranchID)
	assert.Equal(t, main.ID, *reloaded.MergedIntoBranchID)
	assert.Equal(t, merge.ResultVersionID, reloaded.MergeResultVersionID)
}

func TestMergeTheirsTakesSourceWholesale(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyTheirs)
	require.NoError(t, err)
	assert.Equal(t, model.MergeCompleted, merge.Status)
	require.NotNil(t, merge.ResultVersionID)

	result, err := env.versionRepo.FindByID(*merge.ResultVersionID)
	require.NoError(t, err)
	// 有冲突时 theirs 为源内容整体覆盖，目标独有的 z 不保留
	assert.Equal(t, model.ContentTree{"x": float64(1), "y": float64(2)}, result.Content)
}

func TestMergeOursKeepsTarget(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	targetLatest, err := env.versionRepo.GetLatest("lesson", 1, util.MainBranch)
	require.NoError(t, err)

	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyOurs)
	require.NoError(t, err)
	assert.Equal(t, model.MergeCompleted, merge.Status)
	require.NotNil(t, merge.ResultVersionID)
	assert.Equal(t, targetLatest.ID, *merge.ResultVersionID)

	// 不生成新版本
	latest, err := env.versionRepo.GetLatest("lesson", 1, util.MainBranch)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.VersionNumber)
}

func TestMergeManualWithoutConflictsCompletes(t *testing.T) {
	env := newTestEnv(t)

	env.mustCreateVersion(t, model.ContentTree{"x": float64(9)}, 10, "")
	feature, err := env.versions.CreateBranch("lesson", 1, "feature", 11, "", nil, nil)
	require.NoError(t, err)
	env.mustCreateVersion(t, model.ContentTree{"y": float64(2)}, 11, "feature")
	main, err := env.branchRepo.FindByName("lesson", 1, util.MainBranch)
	require.NoError(t, err)

	// 无冲突时任何策略都直接合并
	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyManual)
	require.NoError(t, err)
	assert.Equal(t, model.MergeCompleted, merge.Status)
	require.NotNil(t, merge.ResultVersionID)

	result, err := env.versionRepo.FindByID(*merge.ResultVersionID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentTree{"x": float64(9), "y": float64(2)}, result.Content)
}

func TestMergeInvalidStrategy(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	_, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.Strategy("rebase"))
	assert.ErrorIs(t, err, util.ErrInvalidMergeStrategy)
}

func TestMergeUnknownBranch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.merges.MergeBranches(1, 2, 11, treediff.StrategyAuto)
	assert.ErrorIs(t, err, util.ErrBranchNotFound)
}

func TestGetMerge(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	merge, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyManual)
	require.NoError(t, err)

	found, err := env.merges.GetMerge(merge.ID)
	require.NoError(t, err)
	assert.Equal(t, merge.ID, found.ID)
	assert.Equal(t, model.MergeConflicts, found.Status)
	assert.Len(t, found.Conflicts, 1)

	_, err = env.merges.GetMerge("nonexistent")
	assert.ErrorIs(t, err, util.ErrMergeNotFound)
}

func TestGetTargetBranchMerges(t *testing.T) {
	env := newTestEnv(t)
	main, feature := setupDivergedBranches(t, env)

	_, err := env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyManual)
	require.NoError(t, err)
	_, err = env.merges.MergeBranches(feature.ID, main.ID, 11, treediff.StrategyAuto)
	require.NoError(t, err)

	merges, err := env.merges.GetTargetBranchMerges(main.ID)
	require.NoError(t, err)
	assert.Len(t, merges, 2)

	// feature 从未作为合并目标
	merges, err = env.merges.GetTargetBranchMerges(feature.ID)
	require.NoError(t, err)
	assert.Empty(t, merges)

	_, err = env.merges.GetTargetBranchMerges(9999)
	assert.ErrorIs(t, err, util.ErrBranchNotFound)
}

func TestGetDiffComputedOnceThenCached(t *testing.T) {
	env := newTestEnv(t)

	v1 := env.mustCreateVersion(t, model.ContentTree{"title": "a", "weight": float64(1)}, 10, "")
	v2 := env.mustCreateVersion(t, model.ContentTree{"title": "b", "author": "li"}, 10, "")

	diff, err := env.merges.GetDiff(v1.ID, v2.ID, 10)
	require.NoError(t, err)
	require.Len(t, diff.Changes, 3)
	assert.Equal(t, "author", diff.Changes[0].Path)
	assert.Equal(t, treediff.ChangeCreated, diff.Changes[0].Type)
	assert.Equal(t, "title", diff.Changes[1].Path)
	assert.Equal(t, treediff.ChangeUpdated, diff.Changes[1].Type)
	assert.Equal(t, "weight", diff.Changes[2].Path)
	assert.Equal(t, treediff.ChangeDeleted, diff.Changes[2].Type)

	// 二次查询命中已存记录
	again, err := env.merges.GetDiff(v1.ID, v2.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, diff.ID, again.ID)
	assert.Equal(t, uint(10), again.GeneratedBy)

	_, err = env.merges.GetDiff(v1.ID, 9999, 10)
	assert.ErrorIs(t, err, util.ErrVersionNotFound)
}
