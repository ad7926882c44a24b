package model

import "time"

type ApprovalStatus string

const (
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalApproved         ApprovalStatus = "approved"
	ApprovalRejected         ApprovalStatus = "rejected"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
)

// swagger:model VersionApproval
type VersionApproval struct {
	BaseModel

	VersionID        uint           `gorm:"index:idx_approval_reviewer;type:bigint unsigned;not null" json:"versionId"`
	ReviewerID       uint           `gorm:"index:idx_approval_reviewer;type:bigint unsigned;not null" json:"reviewerId"`
	Status           ApprovalStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	DecisionNotes    string         `gorm:"type:text" json:"decisionNotes"`
	RequestedChanges StringList     `gorm:"type:json" json:"requestedChanges,omitempty"`
	DecidedAt        *time.Time     `json:"decidedAt,omitempty"`
}

func (VersionApproval) TableName() string {
	return "version_approvals"
}
