package model

type VersionStatus string

const (
	StatusDraft         VersionStatus = "draft"
	StatusPendingReview VersionStatus = "pending_review"
	StatusInReview      VersionStatus = "in_review"
	StatusApproved      VersionStatus = "approved"
	StatusRejected      VersionStatus = "rejected"
	StatusPublished     VersionStatus = "published"
)

// versionTransitions 版本状态机。REJECTED 不自动回到 DRAFT，
// 作者需要新建编辑并重新提交。
var versionTransitions = map[VersionStatus][]VersionStatus{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusInReview},
	StatusInReview:      {StatusApproved, StatusRejected},
	StatusApproved:      {StatusPublished},
	StatusRejected:      {},
	StatusPublished:     {},
}

// CanTransitionTo 校验状态机是否允许当前状态迁移到 next
func (s VersionStatus) CanTransitionTo(next VersionStatus) bool {
	for _, allowed := range versionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable 内容是否还允许覆盖写
func (s VersionStatus) Editable() bool {
	return s == StatusDraft
}

// swagger:model ContentVersion
type ContentVersion struct {
	BaseModel

	EntityType      string        `gorm:"size:50;index:idx_entity_branch;not null" json:"entityType"`
	EntityID        uint          `gorm:"index:idx_entity_branch;type:bigint unsigned;not null" json:"entityId"`
	Branch          string        `gorm:"size:100;index:idx_entity_branch;default:'main'" json:"branch"`
	BranchID        *uint         `gorm:"index;type:bigint unsigned" json:"branchId,omitempty"`
	VersionNumber   int           `gorm:"default:1" json:"versionNumber"`
	Content         ContentTree   `gorm:"type:json" json:"content"`
	Title           string        `gorm:"size:255" json:"title"`
	Description     string        `gorm:"type:text" json:"description"`
	Changelog       string        `gorm:"type:text" json:"changelog"`
	Status          VersionStatus `gorm:"size:20;index;default:'draft'" json:"status"`
	ParentVersionID *uint         `gorm:"type:bigint unsigned" json:"parentVersionId,omitempty"`
	IsLatest        bool          `gorm:"default:true;index" json:"isLatest"`
	CreatedBy       uint          `gorm:"index;type:bigint unsigned" json:"createdBy"`
	OrganizationID  *uint         `gorm:"index;type:bigint unsigned" json:"organizationId,omitempty"`
}

func (ContentVersion) TableName() string {
	return "content_versions"
}
