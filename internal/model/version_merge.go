package model

import "edu_content_backend/internal/treediff"

type MergeStatus string

const (
	MergePending   MergeStatus = "pending"
	MergeConflicts MergeStatus = "conflicts"
	MergeCompleted MergeStatus = "completed"
)

// VersionMerge 一次合并尝试的记录。MANUAL 策略遇到冲突时停在
// conflicts 状态，由外部完成人工处理。
// swagger:model VersionMerge
type VersionMerge struct {
	UUIDBase

	SourceBranchID  uint              `gorm:"index;type:bigint unsigned;not null" json:"sourceBranchId"`
	TargetBranchID  uint              `gorm:"index;type:bigint unsigned;not null" json:"targetBranchId"`
	SourceVersionID uint              `gorm:"type:bigint unsigned" json:"sourceVersionId"`
	TargetVersionID uint              `gorm:"type:bigint unsigned" json:"targetVersionId"`
	Strategy        treediff.Strategy `gorm:"size:20" json:"strategy"`
	Status          MergeStatus       `gorm:"size:20;index;default:'pending'" json:"status"`
	MergedBy        uint              `gorm:"index;type:bigint unsigned" json:"mergedBy"`
	Conflicts       ConflictList      `gorm:"type:json" json:"conflicts,omitempty"`
	ResultVersionID *uint             `gorm:"type:bigint unsigned" json:"resultVersionId,omitempty"`
}

func (VersionMerge) TableName() string {
	return "version_merges"
}
