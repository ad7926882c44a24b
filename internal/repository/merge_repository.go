package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type MergeRepository struct {
	DB *gorm.DB
}

func NewMergeRepository(db *gorm.DB) *MergeRepository {
	return &MergeRepository{DB: db}
}

func (r *MergeRepository) Create(merge *model.VersionMerge) error {
	return r.DB.Create(merge).Error
}

func (r *MergeRepository) Save(merge *model.VersionMerge) error {
	return r.DB.Save(merge).Error
}

func (r *MergeRepository) FindByID(id string) (*model.VersionMerge, error) {
	var merge model.VersionMerge
	err := r.DB.First(&merge, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &merge, nil
}

// GetForTargetBranch 分支作为合并目标的全部合并记录
func (r *MergeRepository) GetForTargetBranch(targetBranchID uint) ([]model.VersionMerge, error) {
	var merges []model.VersionMerge
	err := r.DB.Where("target_branch_id = ?", targetBranchID).
		Order("created_at DESC").
		Find(&merges).Error
	return merges, err
}
