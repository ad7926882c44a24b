package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type ApprovalRepository struct {
	DB *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{DB: db}
}

func (r *ApprovalRepository) Create(approval *model.VersionApproval) error {
	return r.DB.Create(approval).Error
}

func (r *ApprovalRepository) Save(approval *model.VersionApproval) error {
	return r.DB.Save(approval).Error
}

func (r *ApprovalRepository) FindByVersionAndReviewer(versionID, reviewerID uint) (*model.VersionApproval, error) {
	var approval model.VersionApproval
	err := r.DB.Where("version_id = ? AND reviewer_id = ?", versionID, reviewerID).
		First(&approval).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *ApprovalRepository) GetForVersion(versionID uint) ([]model.VersionApproval, error) {
	var approvals []model.VersionApproval
	err := r.DB.Where("version_id = ?", versionID).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}

// GetPendingForReviewer 审核人的个人待办队列
func (r *ApprovalRepository) GetPendingForReviewer(reviewerID uint) ([]model.VersionApproval, error) {
	var approvals []model.VersionApproval
	err := r.DB.Where("reviewer_id = ? AND status = ?", reviewerID, model.ApprovalPending).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}
