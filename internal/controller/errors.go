package controller

import (
	"errors"

	"edu_content_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// handleServiceError 把业务错误映射为统一的HTTP响应
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrVersionNotFound),
		errors.Is(err, util.ErrBranchNotFound),
		errors.Is(err, util.ErrLockNotFound),
		errors.Is(err, util.ErrMergeNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidVersionTransition),
		errors.Is(err, util.ErrInvalidApproval),
		errors.Is(err, util.ErrVersionNotEditable),
		errors.Is(err, util.ErrInvalidMergeStrategy):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrContentLocked),
		errors.Is(err, util.ErrBranchNameExists),
		errors.Is(err, util.ErrBranchClosed),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrLockNotOwner):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
