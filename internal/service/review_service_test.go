package service

import (
	"context"
	"testing"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewLifecycle(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.SubmitForReview(v.ID, "提交审核")
	require.NoError(t, err)

	approval, err := env.reviews.AssignReviewer(v.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, approval.Status)

	started, err := env.reviews.StartReview(v.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInReview, started.Status)

	approved, err := env.reviews.Approve(v.ID, 20, "内容合格")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)

	// 审核人的决定被记录
	record, err := env.approvalRepo.FindByVersionAndReviewer(v.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, record.Status)
	assert.Equal(t, "内容合格", record.DecisionNotes)
	require.NotNil(t, record.DecidedAt)

	published, err := env.versions.Publish(v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, published.Status)

	current, err := env.history.GetCurrentVersion(context.Background(), "lesson", 1)
	require.NoError(t, err)
	assert.Equal(t, v.ID, current.ID)
}

func TestAssignReviewerRules(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	// 草稿不能分配审核人
	_, err := env.reviews.AssignReviewer(v.ID, 20)
	assert.ErrorIs(t, err, util.ErrInvalidApproval)

	_, err = env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)

	first, err := env.reviews.AssignReviewer(v.ID, 20)
	require.NoError(t, err)

	// 重复分配幂等
	second, err := env.reviews.AssignReviewer(v.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestApproveRequiresInReview(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)

	// 未开始审核不能直接通过
	_, err = env.reviews.Approve(v.ID, 20, "")
	assert.ErrorIs(t, err, util.ErrInvalidVersionTransition)
}

func TestRejectIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)
	_, err = env.reviews.StartReview(v.ID, 20)
	require.NoError(t, err)

	rejected, err := env.reviews.Reject(v.ID, 20, "需要重写")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)

	// 被驳回的版本不能复活，作者需要新建版本重新提交
	_, err = env.versions.SubmitForReview(v.ID, "")
	assert.ErrorIs(t, err, util.ErrInvalidVersionTransition)
	_, err = env.versions.UpdateContent(v.ID, model.ContentTree{"title": "b"}, 10)
	assert.ErrorIs(t, err, util.ErrVersionNotEditable)
}

func TestRequestChanges(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.reviews.RequestChanges(v.ID, 20, []string{"补充例题"}, "")
	assert.ErrorIs(t, err, util.ErrInvalidApproval)

	_, err = env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)

	approval, err := env.reviews.RequestChanges(v.ID, 20, []string{"补充例题", "修正图示"}, "见清单")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalChangesRequested, approval.Status)
	assert.Equal(t, model.StringList{"补充例题", "修正图示"}, approval.RequestedChanges)

	// 版本自身状态不变
	version, err := env.versionRepo.FindByID(v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingReview, version.Status)
}

func TestGetApprovals(t *testing.T) {
	env := newTestEnv(t)
	v := env.mustCreateVersion(t, model.ContentTree{"title": "a"}, 10, "")

	_, err := env.versions.SubmitForReview(v.ID, "")
	require.NoError(t, err)

	_, err = env.reviews.AssignReviewer(v.ID, 20)
	require.NoError(t, err)
	_, err = env.reviews.AssignReviewer(v.ID, 21)
	require.NoError(t, err)

	approvals, err := env.reviews.GetApprovals(v.ID)
	require.NoError(t, err)
	assert.Len(t, approvals, 2)

	_, err = env.reviews.GetApprovals(9999)
	assert.ErrorIs(t, err, util.ErrVersionNotFound)
}
