package controller

import (
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/treediff"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MergeController struct {
	merges *service.MergeService
}

func NewMergeController(merges *service.MergeService) *MergeController {
	return &MergeController{merges: merges}
}

type MergeBranchesRequest struct {
	SourceBranchID uint   `json:"sourceBranchId" binding:"required"`
	TargetBranchID uint   `json:"targetBranchId" binding:"required"`
	Strategy       string `json:"strategy" binding:"required"`
}

// MergeBranches godoc
// @Summary 合并分支
// @Description 把源分支的最新版本按所选策略（auto/manual/ours/theirs）合并进目标分支
// @Tags 合并
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body MergeBranchesRequest true "合并参数"
// @Success 200 {object} util.Response{data=model.VersionMerge}
// @Router /api/merges [post]
func (c *MergeController) MergeBranches(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req MergeBranchesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	merge, err := c.merges.MergeBranches(req.SourceBranchID, req.TargetBranchID,
		user.UserID, treediff.Strategy(req.Strategy))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, merge)
}

// GetMerge godoc
// @Summary 查询合并记录
// @Tags 合并
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "合并记录ID"
// @Success 200 {object} util.Response{data=model.VersionMerge}
// @Router /api/merges/{id} [get]
func (c *MergeController) GetMerge(ctx *gin.Context) {
	merge, err := c.merges.GetMerge(ctx.Param("id"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, merge)
}

// ListBranchMerges godoc
// @Summary 分支的合并历史
// @Description 分支作为合并目标的全部合并记录
// @Tags 合并
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "分支ID"
// @Success 200 {object} util.Response{data=[]model.VersionMerge}
// @Router /api/branches/{id}/merges [get]
func (c *MergeController) ListBranchMerges(ctx *gin.Context) {
	merges, err := c.merges.GetTargetBranchMerges(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, merges)
}

// GetDiff godoc
// @Summary 版本间结构化差异
// @Description 首次计算后按 (source, target) 缓存复用
// @Tags 合并
// @Produce json
// @Security ApiKeyAuth
// @Param source query int true "源版本ID"
// @Param target query int true "目标版本ID"
// @Success 200 {object} util.Response{data=model.VersionDiff}
// @Router /api/diffs [get]
func (c *MergeController) GetDiff(ctx *gin.Context) {
	sourceID := util.MustParseUint(ctx.Query("source"))
	targetID := util.MustParseUint(ctx.Query("target"))
	if sourceID == 0 || targetID == 0 {
		util.BadRequest(ctx, "source 与 target 均为必填")
		return
	}

	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	diff, err := c.merges.GetDiff(sourceID, targetID, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, diff)
}
