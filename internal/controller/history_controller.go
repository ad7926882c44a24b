package controller

import (
	"strconv"

	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	history *service.HistoryService
}

func NewHistoryController(history *service.HistoryService) *HistoryController {
	return &HistoryController{history: history}
}

// GetVersionHistory godoc
// @Summary 版本历史
// @Description 分页版本历史，可按分支过滤
// @Tags 历史查询
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Param branch query string false "分支名"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页条数" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/entities/{type}/{id}/history [get]
func (c *HistoryController) GetVersionHistory(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	versions, total, err := c.history.GetVersionHistory(ctx.Param("type"),
		util.MustParseUint(ctx.Param("id")), ctx.Query("branch"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  versions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetCurrentVersion godoc
// @Summary 实体当前生效版本
// @Description main 分支上最新的已发布版本
// @Tags 历史查询
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/entities/{type}/{id}/current [get]
func (c *HistoryController) GetCurrentVersion(ctx *gin.Context) {
	version, err := c.history.GetCurrentVersion(ctx.Request.Context(),
		ctx.Param("type"), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

// GetHistorySummary godoc
// @Summary 历史概览
// @Tags 历史查询
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Success 200 {object} util.Response{data=repository.HistorySummary}
// @Router /api/entities/{type}/{id}/summary [get]
func (c *HistoryController) GetHistorySummary(ctx *gin.Context) {
	summary, err := c.history.GetHistorySummary(ctx.Param("type"), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}

// GetPendingReviews godoc
// @Summary 待审队列
// @Description 按实体类型/组织过滤的待审版本列表
// @Tags 历史查询
// @Produce json
// @Security ApiKeyAuth
// @Param entityType query string false "实体类型"
// @Param organizationId query int false "组织ID"
// @Success 200 {object} util.Response{data=[]model.ContentVersion}
// @Router /api/reviews/pending [get]
func (c *HistoryController) GetPendingReviews(ctx *gin.Context) {
	var orgID *uint
	if raw := ctx.Query("organizationId"); raw != "" {
		id := util.MustParseUint(raw)
		orgID = &id
	}

	versions, err := c.history.GetPendingReviews(ctx.Query("entityType"), orgID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, versions)
}

// GetReviewerQueue godoc
// @Summary 我的审核队列
// @Description 当前用户名下 pending 的审核任务
// @Tags 历史查询
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ReviewQueueItem}
// @Router /api/reviews/my-queue [get]
func (c *HistoryController) GetReviewerQueue(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.history.GetReviewerQueue(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, items)
}
