package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/treediff"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionService 版本生命周期与分支管理
type VersionService struct {
	VersionRepo *repository.VersionRepository
	BranchRepo  *repository.BranchRepository
	LockRepo    *repository.LockRepository
	Redis       *redis.Client
}

func NewVersionService(versionRepo *repository.VersionRepository, branchRepo *repository.BranchRepository, lockRepo *repository.LockRepository, rdb *redis.Client) *VersionService {
	return &VersionService{
		VersionRepo: versionRepo,
		BranchRepo:  branchRepo,
		LockRepo:    lockRepo,
		Redis:       rdb,
	}
}

// CreateVersion 在指定分支上创建新的草稿版本。版本号按 (entity, branch)
// 递增，原最新版本的 is_latest 被清除。
func (s *VersionService) CreateVersion(entityType string, entityID uint, content model.ContentTree, authorID uint, title, description string, orgID *uint, branch string) (*model.ContentVersion, error) {
	if branch == "" {
		branch = util.MainBranch
	}

	branchID, err := s.resolveBranchID(entityType, entityID, branch)
	if err != nil {
		return nil, err
	}

	return s.createOnBranch(entityType, entityID, branch, branchID, content, authorID, title, description, "", orgID)
}

// CreateVersionOnBranch 供合并编排使用：在已解析的分支上落一个新版本
func (s *VersionService) CreateVersionOnBranch(branch *model.VersionBranch, content model.ContentTree, authorID uint, title, description, changelog string, orgID *uint) (*model.ContentVersion, error) {
	branchID := branch.ID
	return s.createOnBranch(branch.EntityType, branch.EntityID, branch.Name, &branchID, content, authorID, title, description, changelog, orgID)
}

func (s *VersionService) resolveBranchID(entityType string, entityID uint, branch string) (*uint, error) {
	record, err := s.BranchRepo.FindByName(entityType, entityID, branch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// main 分支不要求有分支记录
			if branch == util.MainBranch {
				return nil, nil
			}
			return nil, util.ErrBranchNotFound
		}
		return nil, err
	}
	if !record.IsActive {
		return nil, util.ErrBranchClosed
	}
	id := record.ID
	return &id, nil
}

func (s *VersionService) createOnBranch(entityType string, entityID uint, branch string, branchID *uint, content model.ContentTree, authorID uint, title, description, changelog string, orgID *uint) (*model.ContentVersion, error) {
	nextNumber, err := s.VersionRepo.GetNextVersionNumber(entityType, entityID, branch)
	if err != nil {
		return nil, err
	}

	var parentVersionID *uint
	latest, err := s.VersionRepo.GetLatest(entityType, entityID, branch)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if latest != nil {
		parentVersionID = &latest.ID
		if err := s.VersionRepo.ClearLatest(entityType, entityID, branch); err != nil {
			return nil, err
		}
	}

	version := &model.ContentVersion{
		EntityType:      entityType,
		EntityID:        entityID,
		Branch:          branch,
		BranchID:        branchID,
		VersionNumber:   nextNumber,
		Content:         content,
		Title:           title,
		Description:     description,
		Changelog:       changelog,
		Status:          model.StatusDraft,
		ParentVersionID: parentVersionID,
		IsLatest:        true,
		CreatedBy:       authorID,
		OrganizationID:  orgID,
	}

	if err := s.VersionRepo.Create(version); err != nil {
		return nil, err
	}

	logger.Log.Info("content version created",
		zap.String("entityType", entityType),
		zap.Uint("entityId", entityID),
		zap.String("branch", branch),
		zap.Int("versionNumber", nextNumber))

	return version, nil
}

// UpdateContent 覆盖写草稿内容。实体被他人持锁时拒绝写入。
func (s *VersionService) UpdateContent(versionID uint, content model.ContentTree, userID uint) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}

	if !version.Status.Editable() {
		return nil, util.ErrVersionNotEditable
	}

	lock, err := s.LockRepo.GetActiveLock(version.EntityType, version.EntityID, time.Now())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if lock != nil && lock.LockedBy != userID {
		return nil, util.ErrContentLocked
	}

	version.Content = content
	if err := s.VersionRepo.Save(version); err != nil {
		return nil, err
	}
	return version, nil
}

// SubmitForReview 草稿提交审核，可附变更说明
func (s *VersionService) SubmitForReview(versionID uint, changelog string) (*model.ContentVersion, error) {
	return s.transition(versionID, model.StatusPendingReview, func(v *model.ContentVersion) {
		if changelog != "" {
			v.Changelog = changelog
		}
	})
}

// Publish 已批准的版本发布，成为实体的当前生效版本
func (s *VersionService) Publish(versionID uint) (*model.ContentVersion, error) {
	version, err := s.transition(versionID, model.StatusPublished, nil)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := currentVersionCacheKey(version.EntityType, version.EntityID)
		if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
			logger.Log.Warn("failed to invalidate current version cache", zap.String("key", key), zap.Error(err))
		}
	}

	return version, nil
}

func (s *VersionService) transition(versionID uint, next model.VersionStatus, mutate func(*model.ContentVersion)) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}

	if !version.Status.CanTransitionTo(next) {
		return nil, util.ErrInvalidVersionTransition
	}

	version.Status = next
	if mutate != nil {
		mutate(version)
	}
	if err := s.VersionRepo.Save(version); err != nil {
		return nil, err
	}
	return version, nil
}

// Rollback 回滚到历史版本：在 main 分支上追加一个内容相同的新版本，
// 历史只增不改。
func (s *VersionService) Rollback(entityType string, entityID, targetVersionID, userID uint) (*model.ContentVersion, error) {
	target, err := s.VersionRepo.FindByID(targetVersionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	if target.EntityType != entityType || target.EntityID != entityID {
		return nil, util.ErrVersionNotFound
	}

	changelog := fmt.Sprintf("回滚到版本 %d", target.VersionNumber)
	content := model.ContentTree(treediff.CopyTree(target.Content))

	return s.createOnBranch(entityType, entityID, util.MainBranch, nil, content, userID, target.Title, target.Description, changelog, target.OrganizationID)
}

// CreateBranch 从某个版本拉出命名分支，同实体下分支名唯一
func (s *VersionService) CreateBranch(entityType string, entityID uint, name string, authorID uint, description string, sourceVersionID *uint, orgID *uint) (*model.VersionBranch, error) {
	_, err := s.BranchRepo.FindByName(entityType, entityID, name)
	if err == nil {
		return nil, util.ErrBranchNameExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var branchedFrom *uint
	if sourceVersionID != nil {
		source, err := s.VersionRepo.FindByID(*sourceVersionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrVersionNotFound
			}
			return nil, err
		}
		branchedFrom = &source.ID
	} else {
		latest, err := s.VersionRepo.GetLatest(entityType, entityID, util.MainBranch)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrVersionNotFound
			}
			return nil, err
		}
		branchedFrom = &latest.ID
	}

	// 保证 main 分支也有记录，便于后续按分支 ID 合并
	if _, err := s.ensureMainBranch(entityType, entityID, authorID, orgID); err != nil {
		return nil, err
	}

	branch := &model.VersionBranch{
		EntityType:            entityType,
		EntityID:              entityID,
		Name:                  name,
		Description:           description,
		ParentBranch:          util.MainBranch,
		BranchedFromVersionID: branchedFrom,
		IsActive:              true,
		CreatedBy:             authorID,
		OrganizationID:        orgID,
	}
	if err := s.BranchRepo.Create(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *VersionService) ensureMainBranch(entityType string, entityID, authorID uint, orgID *uint) (*model.VersionBranch, error) {
	main, err := s.BranchRepo.FindByName(entityType, entityID, util.MainBranch)
	if err == nil {
		return main, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	main = &model.VersionBranch{
		EntityType:     entityType,
		EntityID:       entityID,
		Name:           util.MainBranch,
		ParentBranch:   "",
		IsActive:       true,
		CreatedBy:      authorID,
		OrganizationID: orgID,
	}
	if err := s.BranchRepo.Create(main); err != nil {
		return nil, err
	}
	return main, nil
}

// CloseBranch 关闭分支，关闭后默认列表不再展示
func (s *VersionService) CloseBranch(branchID uint) (*model.VersionBranch, error) {
	branch, err := s.BranchRepo.FindByID(branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBranchNotFound
		}
		return nil, err
	}

	branch.IsActive = false
	if err := s.BranchRepo.Save(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// GetVersion 按 ID 取版本
func (s *VersionService) GetVersion(versionID uint) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}
