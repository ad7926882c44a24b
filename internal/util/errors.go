package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")

	ErrVersionNotFound          = errors.New("version not found")
	ErrBranchNotFound           = errors.New("branch not found")
	ErrBranchNameExists         = errors.New("branch name already exists for this entity")
	ErrBranchClosed             = errors.New("branch is closed")
	ErrInvalidVersionTransition = errors.New("invalid version status transition")
	ErrVersionNotEditable       = errors.New("version is not editable in its current status")
	ErrContentLocked            = errors.New("content is locked by another user")
	ErrInvalidApproval          = errors.New("invalid approval operation")
	ErrLockNotFound             = errors.New("lock not found or expired")
	ErrLockNotOwner             = errors.New("lock is owned by another user")
	ErrMergeNotFound            = errors.New("merge record not found")
	ErrInvalidMergeStrategy     = errors.New("invalid merge strategy")
)
