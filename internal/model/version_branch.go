package model

// swagger:model VersionBranch
type VersionBranch struct {
	BaseModel

	EntityType            string `gorm:"size:50;index:idx_branch_entity;not null" json:"entityType"`
	EntityID              uint   `gorm:"index:idx_branch_entity;type:bigint unsigned;not null" json:"entityId"`
	Name                  string `gorm:"size:100;index:idx_branch_entity;not null" json:"name"`
	Description           string `gorm:"type:text" json:"description"`
	ParentBranch          string `gorm:"size:100;default:'main'" json:"parentBranch"`
	BranchedFromVersionID *uint  `gorm:"type:bigint unsigned" json:"branchedFromVersionId,omitempty"`
	IsActive              bool   `gorm:"default:true;index" json:"isActive"`
	MergedIntoBranchID    *uint  `gorm:"type:bigint unsigned" json:"mergedIntoBranchId,omitempty"`
	MergeResultVersionID  *uint  `gorm:"type:bigint unsigned" json:"mergeResultVersionId,omitempty"`
	CreatedBy             uint   `gorm:"index;type:bigint unsigned" json:"createdBy"`
	OrganizationID        *uint  `gorm:"index;type:bigint unsigned" json:"organizationId,omitempty"`
}

func (VersionBranch) TableName() string {
	return "version_branches"
}
