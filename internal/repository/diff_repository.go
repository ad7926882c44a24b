package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type DiffRepository struct {
	DB *gorm.DB
}

func NewDiffRepository(db *gorm.DB) *DiffRepository {
	return &DiffRepository{DB: db}
}

// FindByVersions 按 (source, target) 取缓存的差异
func (r *DiffRepository) FindByVersions(sourceVersionID, targetVersionID uint) (*model.VersionDiff, error) {
	var diff model.VersionDiff
	err := r.DB.Where("source_version_id = ? AND target_version_id = ?", sourceVersionID, targetVersionID).
		First(&diff).Error
	if err != nil {
		return nil, err
	}
	return &diff, nil
}

func (r *DiffRepository) Create(diff *model.VersionDiff) error {
	return r.DB.Create(diff).Error
}
