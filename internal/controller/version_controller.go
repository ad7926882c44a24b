package controller

import (
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VersionController struct {
	versions  *service.VersionService
	snapshots *service.SnapshotService
}

func NewVersionController(versions *service.VersionService, snapshots *service.SnapshotService) *VersionController {
	return &VersionController{versions: versions, snapshots: snapshots}
}

type CreateVersionRequest struct {
	EntityType     string            `json:"entityType" binding:"required"`
	EntityID       uint              `json:"entityId" binding:"required"`
	Content        model.ContentTree `json:"content" binding:"required"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Branch         string            `json:"branch"`
	OrganizationID *uint             `json:"organizationId"`
}

// CreateVersion godoc
// @Summary 创建内容版本
// @Description 在指定分支上创建新的草稿版本，分支缺省为 main
// @Tags 版本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateVersionRequest true "版本内容"
// @Success 201 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions [post]
func (c *VersionController) CreateVersion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateVersionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.versions.CreateVersion(req.EntityType, req.EntityID, req.Content,
		user.UserID, req.Title, req.Description, req.OrganizationID, req.Branch)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Created(ctx, version)
}

type UpdateContentRequest struct {
	Content model.ContentTree `json:"content" binding:"required"`
}

// UpdateContent godoc
// @Summary 覆盖写草稿内容
// @Description 实体被其他用户持锁时返回 409
// @Tags 版本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body UpdateContentRequest true "内容树"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/content [put]
func (c *VersionController) UpdateContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.versions.UpdateContent(util.MustParseUint(ctx.Param("id")), req.Content, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

type SubmitForReviewRequest struct {
	Changelog string `json:"changelog"`
}

// SubmitForReview godoc
// @Summary 提交审核
// @Tags 版本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Param body body SubmitForReviewRequest false "变更说明"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/submit [post]
func (c *VersionController) SubmitForReview(ctx *gin.Context) {
	var req SubmitForReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.versions.SubmitForReview(util.MustParseUint(ctx.Param("id")), req.Changelog)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

// Publish godoc
// @Summary 发布版本
// @Description 已批准的版本发布后成为实体当前生效版本
// @Tags 版本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id}/publish [post]
func (c *VersionController) Publish(ctx *gin.Context) {
	version, err := c.versions.Publish(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

// GetVersion godoc
// @Summary 查询单个版本
// @Tags 版本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Success 200 {object} util.Response{data=model.ContentVersion}
// @Router /api/versions/{id} [get]
func (c *VersionController) GetVersion(ctx *gin.Context) {
	version, err := c.versions.GetVersion(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, version)
}

// ExportVersion godoc
// @Summary 导出版本快照
// @Description 把版本内容树导出为 JSON 快照文件并返回访问地址
// @Tags 版本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "版本ID"
// @Success 200 {object} util.Response{data=map[string]string}
// @Router /api/versions/{id}/export [get]
func (c *VersionController) ExportVersion(ctx *gin.Context) {
	version, err := c.versions.GetVersion(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	url, err := c.snapshots.ExportVersion(ctx.Request.Context(), version)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

type RollbackRequest struct {
	TargetVersionID uint `json:"targetVersionId" binding:"required"`
}

// Rollback godoc
// @Summary 回滚到历史版本
// @Description 在 main 分支追加一个内容与目标版本相同的新版本，历史只增不改
// @Tags 版本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Param body body RollbackRequest true "目标版本"
// @Success 201 {object} util.Response{data=model.ContentVersion}
// @Router /api/entities/{type}/{id}/rollback [post]
func (c *VersionController) Rollback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RollbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	version, err := c.versions.Rollback(ctx.Param("type"), util.MustParseUint(ctx.Param("id")),
		req.TargetVersionID, user.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Created(ctx, version)
}
