package controller

import (
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	reviews *service.ReviewService
}

func NewReviewController(reviews *service.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

type AssignReviewerRequest struct {
	ReviewerID uint `json:"reviewerId" binding:"required"`
}

// AssignReviewer godoc
// @Summary 分配审核人
// @Description 版本须处于待审状态
// @Tags 审核
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body AssignReviewerRequest true "审核人"
// @Success 201 {object} util.Response{data=model.VersionApproval}
// @Router /api/versions/{id}/reviewers [post]
func (c *ReviewController) AssignReviewer(ctx *gin.Context) {
	var req AssignReviewerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	approval, err := c.reviews.AssignReviewer(util.MustParseUint(ctx.Param("id")), req.ReviewerID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Created(ctx, approval)
}

// StartReview godoc
// @Summary 开始审核
// @Tags 审核
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/review/start [post]
func (c *ReviewController) StartReview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	version, err := c.reviews.StartReview(util.MustParseUint(ctx.Param("id")), user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

type ReviewDecisionRequest struct {
	Notes string `json:"notes"`
}

// Approve godoc
// @Summary 审核通过
// @Tags 审核
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body ReviewDecisionRequest false "审核意见"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/review/approve [post]
func (c *ReviewController) Approve(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ReviewDecisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.reviews.Approve(util.MustParseUint(ctx.Param("id")), user.UserID, req.Notes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

type RejectRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// Reject godoc
// @Summary 审核驳回
// @Description 驳回后版本回到作者手中，需重新编辑提交
// @Tags 审核
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body RejectRequest true "驳回原因"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/review/reject [post]
func (c *ReviewController) Reject(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.reviews.Reject(util.MustParseUint(ctx.Param("id")), user.UserID, req.Notes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

type RequestChangesRequest struct {
	Changes []string `json:"changes" binding:"required"`
	Notes   string   `json:"notes"`
}

// RequestChanges godoc
// @Summary 要求修改
// @Description 记录修改意见，不改变版本自身状态
// @Tags 审核
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body RequestChangesRequest true "修改意见"
// @Success 200 {object} util.Response{data=model.VersionApproval}
// @Router /api/versions/{id}/review/request-changes [post]
func (c *ReviewController) RequestChanges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RequestChangesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	approval, err := c.reviews.RequestChanges(util.MustParseUint(ctx.Param("id")), user.UserID, req.Changes, req.Notes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, approval)
}

// GetApprovals godoc
// @Summary 版本的审核记录
// @Tags 审核
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Success 200 {object} util.Response{data=[]model.VersionApproval}
// @Router /api/versions/{id}/approvals [get]
func (c *ReviewController) GetApprovals(ctx *gin.Context) {
	approvals, err := c.reviews.GetApprovals(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, approvals)
}
