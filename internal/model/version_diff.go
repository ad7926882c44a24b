package model

// VersionDiff 两个版本间结构化差异的缓存，按 (source, target) 复用
// swagger:model VersionDiff
type VersionDiff struct {
	UUIDBase

	SourceVersionID uint       `gorm:"index:idx_diff_pair;type:bigint unsigned;not null" json:"sourceVersionId"`
	TargetVersionID uint       `gorm:"index:idx_diff_pair;type:bigint unsigned;not null" json:"targetVersionId"`
	Changes         ChangeList `gorm:"type:json" json:"changes"`
	GeneratedBy     uint       `gorm:"type:bigint unsigned" json:"generatedBy"`
}

func (VersionDiff) TableName() string {
	return "version_diffs"
}
