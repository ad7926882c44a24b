package controller

import (
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BranchController struct {
	versions *service.VersionService
	history  *service.HistoryService
}

func NewBranchController(versions *service.VersionService, history *service.HistoryService) *BranchController {
	return &BranchController{versions: versions, history: history}
}

type CreateBranchRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	SourceVersionID *uint  `json:"sourceVersionId"`
	OrganizationID  *uint  `json:"organizationId"`
}

// CreateBranch godoc
// @Summary 创建分支
// @Description 从指定版本（缺省为 main 最新版本）拉出命名分支，同实体下分支名唯一
// @Tags 分支
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Param body body CreateBranchRequest true "分支信息"
// @Success 201 {object} util.Response{data=model.VersionBranch}
// @Router /api/entities/{type}/{id}/branches [post]
func (c *BranchController) CreateBranch(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateBranchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	branch, err := c.versions.CreateBranch(ctx.Param("type"), util.MustParseUint(ctx.Param("id")),
		req.Name, user.UserID, req.Description, req.SourceVersionID, req.OrganizationID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Created(ctx, branch)
}

// ListBranches godoc
// @Summary 实体分支列表
// @Description 默认只含活跃分支，includeClosed=true 时包含已关闭分支
// @Tags 分支
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Param includeClosed query bool false "包含已关闭分支"
// @Success 200 {object} util.Response{data=[]model.VersionBranch}
// @Router /api/entities/{type}/{id}/branches [get]
func (c *BranchController) ListBranches(ctx *gin.Context) {
	includeClosed := ctx.Query("includeClosed") == "true"

	branches, err := c.history.GetBranches(ctx.Param("type"), util.MustParseUint(ctx.Param("id")), includeClosed)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, branches)
}

// CloseBranch godoc
// @Summary 关闭分支
// @Tags 分支
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "分支ID"
// @Success 200 {object} util.Response{data=model.VersionBranch}
// @Router /api/branches/{id}/close [post]
func (c *BranchController) CloseBranch(ctx *gin.Context) {
	branch, err := c.versions.CloseBranch(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, branch)
}
