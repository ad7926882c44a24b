package controller

import (
	"edu_content_backend/internal/service"
	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LockController struct {
	locks *service.LockService
}

func NewLockController(locks *service.LockService) *LockController {
	return &LockController{locks: locks}
}

type AcquireLockRequest struct {
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"durationMinutes"`
}

// AcquireLock godoc
// @Summary 获取编辑锁
// @Description 锁是协作式声明，默认 30 分钟后过期，可用心跳续期
// @Tags 编辑锁
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Param body body AcquireLockRequest false "锁参数"
// @Success 201 {object} util.Response{data=model.ContentLock}
// @Router /api/locks/{type}/{id} [post]
func (c *LockController) AcquireLock(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AcquireLockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	lock, err := c.locks.AcquireLock(ctx.Param("type"), util.MustParseUint(ctx.Param("id")),
		user.UserID, req.Reason, req.DurationMinutes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Created(ctx, lock)
}

type RefreshLockRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

// RefreshLock godoc
// @Summary 锁心跳续期
// @Tags 编辑锁
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "锁ID"
// @Param body body RefreshLockRequest false "续期参数"
// @Success 200 {object} util.Response{data=model.ContentLock}
// @Router /api/locks/{id}/refresh [put]
func (c *LockController) RefreshLock(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RefreshLockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, err.Error())
		return
	}

	lock, err := c.locks.RefreshLock(ctx.Param("id"), user.UserID, req.DurationMinutes)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, lock)
}

// ReleaseLock godoc
// @Summary 释放编辑锁
// @Tags 编辑锁
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "锁ID"
// @Success 200 {object} util.Response
// @Router /api/locks/{id} [delete]
func (c *LockController) ReleaseLock(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.locks.ReleaseLock(ctx.Param("id"), user.UserID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// CheckLockStatus godoc
// @Summary 查询实体锁定状态
// @Tags 编辑锁
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "实体类型"
// @Param id path int true "实体ID"
// @Success 200 {object} util.Response{data=service.LockStatus}
// @Router /api/locks/{type}/{id}/status [get]
func (c *LockController) CheckLockStatus(ctx *gin.Context) {
	status, err := c.locks.CheckLockStatus(ctx.Param("type"), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, status)
}
