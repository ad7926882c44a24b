package repository

import (
	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type VersionRepository struct {
	DB *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{DB: db}
}

func (r *VersionRepository) Create(version *model.ContentVersion) error {
	return r.DB.Create(version).Error
}

func (r *VersionRepository) Save(version *model.ContentVersion) error {
	return r.DB.Save(version).Error
}

func (r *VersionRepository) FindByID(id uint) (*model.ContentVersion, error) {
	var version model.ContentVersion
	err := r.DB.First(&version, id).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetLatest 返回分支上 is_latest 的版本，不存在时返回 gorm.ErrRecordNotFound
func (r *VersionRepository) GetLatest(entityType string, entityID uint, branch string) (*model.ContentVersion, error) {
	var version model.ContentVersion
	err := r.DB.Where("entity_type = ? AND entity_id = ? AND branch = ? AND is_latest = ?",
		entityType, entityID, branch, true).
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// GetNextVersionNumber 按 (entity, branch) 单调递增的版本号。
// 并发创建需要持久层在该查询与写入之间自行串行化。
func (r *VersionRepository) GetNextVersionNumber(entityType string, entityID uint, branch string) (int, error) {
	var maxNumber int
	err := r.DB.Model(&model.ContentVersion{}).
		Where("entity_type = ? AND entity_id = ? AND branch = ?", entityType, entityID, branch).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return 0, err
	}
	return maxNumber + 1, nil
}

// ClearLatest 清除分支上旧版本的 is_latest 标记
func (r *VersionRepository) ClearLatest(entityType string, entityID uint, branch string) error {
	return r.DB.Model(&model.ContentVersion{}).
		Where("entity_type = ? AND entity_id = ? AND branch = ? AND is_latest = ?",
			entityType, entityID, branch, true).
		Update("is_latest", false).Error
}

// GetHistory 分页版本历史，branch 为空时不过滤分支
func (r *VersionRepository) GetHistory(entityType string, entityID uint, branch string, page, limit int) ([]model.ContentVersion, int64, error) {
	var versions []model.ContentVersion
	var total int64

	query := r.DB.Model(&model.ContentVersion{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if branch != "" {
		query = query.Where("branch = ?", branch)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("version_number DESC").Offset(offset).Limit(limit).Find(&versions).Error
	if err != nil {
		return nil, 0, err
	}

	return versions, total, nil
}

// GetByStatus 按状态查询版本，entityType/orgID 为零值时不过滤
func (r *VersionRepository) GetByStatus(status model.VersionStatus, entityType string, orgID *uint) ([]model.ContentVersion, error) {
	query := r.DB.Where("status = ?", status)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if orgID != nil {
		query = query.Where("organization_id = ?", *orgID)
	}

	var versions []model.ContentVersion
	err := query.Order("updated_at ASC").Find(&versions).Error
	return versions, err
}

// GetCurrentPublished 实体当前生效版本：main 分支上最新的已发布版本
func (r *VersionRepository) GetCurrentPublished(entityType string, entityID uint) (*model.ContentVersion, error) {
	var version model.ContentVersion
	err := r.DB.Where("entity_type = ? AND entity_id = ? AND branch = ? AND status = ?",
		entityType, entityID, "main", model.StatusPublished).
		Order("version_number DESC").
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// HistorySummary 历史概览投影
type HistorySummary struct {
	EntityType     string `json:"entityType"`
	EntityID       uint   `json:"entityId"`
	TotalVersions  int64  `json:"totalVersions"`
	PublishedCount int64  `json:"publishedCount"`
	DraftCount     int64  `json:"draftCount"`
	InReviewCount  int64  `json:"inReviewCount"`
	BranchCount    int64  `json:"branchCount"`
	LatestNumber   int    `json:"latestNumber"`
}

func (r *VersionRepository) GetHistorySummary(entityType string, entityID uint) (*HistorySummary, error) {
	summary := &HistorySummary{EntityType: entityType, EntityID: entityID}

	base := r.DB.Model(&model.ContentVersion{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	if err := base.Session(&gorm.Session{}).Count(&summary.TotalVersions).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", model.StatusPublished).Count(&summary.PublishedCount).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("status = ?", model.StatusDraft).Count(&summary.DraftCount).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status IN ?", []model.VersionStatus{model.StatusPendingReview, model.StatusInReview}).
		Count(&summary.InReviewCount).Error; err != nil {
		return nil, err
	}

	if err := r.DB.Model(&model.VersionBranch{}).
		Where("entity_type = ? AND entity_id = ? AND is_active = ?", entityType, entityID, true).
		Count(&summary.BranchCount).Error; err != nil {
		return nil, err
	}

	err := r.DB.Model(&model.ContentVersion{}).
		Where("entity_type = ? AND entity_id = ? AND branch = ?", entityType, entityID, "main").
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&summary.LatestNumber).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}
