package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type BranchRepository struct {
	DB *gorm.DB
}

func NewBranchRepository(db *gorm.DB) *BranchRepository {
	return &BranchRepository{DB: db}
}

func (r *BranchRepository) Create(branch *model.VersionBranch) error {
	return r.DB.Create(branch).Error
}

func (r *BranchRepository) Save(branch *model.VersionBranch) error {
	return r.DB.Save(branch).Error
}

func (r *BranchRepository) FindByID(id uint) (*model.VersionBranch, error) {
	var branch model.VersionBranch
	err := r.DB.First(&branch, id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *BranchRepository) FindByName(entityType string, entityID uint, name string) (*model.VersionBranch, error) {
	var branch model.VersionBranch
	err := r.DB.Where("entity_type = ? AND entity_id = ? AND name = ?", entityType, entityID, name).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// GetEntityBranches 默认只列出活跃分支
func (r *BranchRepository) GetEntityBranches(entityType string, entityID uint, includeClosed bool) ([]model.VersionBranch, error) {
	query := r.DB.Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if !includeClosed {
		query = query.Where("is_active = ?", true)
	}

	var branches []model.VersionBranch
	err := query.Order("created_at ASC").Find(&branches).Error
	return branches, err
}
