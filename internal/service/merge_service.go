package service

import (
	"errors"
	"fmt"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/treediff"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/logger"
	"edu_content_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MergeService 合并编排：组合差异计算、冲突检测与版本生命周期
type MergeService struct {
	VersionRepo *repository.VersionRepository
	BranchRepo  *repository.BranchRepository
	MergeRepo   *repository.MergeRepository
	DiffRepo    *repository.DiffRepository
	Versions    *VersionService
}

func NewMergeService(versionRepo *repository.VersionRepository, branchRepo *repository.BranchRepository, mergeRepo *repository.MergeRepository, diffRepo *repository.DiffRepository, versions *VersionService) *MergeService {
	return &MergeService{
		VersionRepo: versionRepo,
		BranchRepo:  branchRepo,
		MergeRepo:   mergeRepo,
		DiffRepo:    diffRepo,
		Versions:    versions,
	}
}

// GetDiff 两个版本间的结构化差异，首次计算后按 (source, target) 缓存
func (s *MergeService) GetDiff(sourceVersionID, targetVersionID, userID uint) (*model.VersionDiff, error) {
	cached, err := s.DiffRepo.FindByVersions(sourceVersionID, targetVersionID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	source, err := s.loadVersion(sourceVersionID)
	if err != nil {
		return nil, err
	}
	target, err := s.loadVersion(targetVersionID)
	if err != nil {
		return nil, err
	}

	diff := &model.VersionDiff{
		SourceVersionID: sourceVersionID,
		TargetVersionID: targetVersionID,
		Changes:         treediff.Diff(source.Content, target.Content),
		GeneratedBy:     userID,
	}
	if err := s.DiffRepo.Create(diff); err != nil {
		return nil, err
	}
	return diff, nil
}

// MergeBranches 把源分支的最新版本合并进目标分支。
// 有冲突且策略为 manual 时只落一条带冲突清单的合并记录，留待人工处理；
// auto（或任意策略下无冲突）做字段级合并并在目标分支生成新版本；
// ours 直接指向目标现有版本；theirs 在目标分支生成源内容的整体拷贝。
func (s *MergeService) MergeBranches(sourceBranchID, targetBranchID, userID uint, strategy treediff.Strategy) (*model.VersionMerge, error) {
	switch strategy {
	case treediff.StrategyAuto, treediff.StrategyManual, treediff.StrategyOurs, treediff.StrategyTheirs:
	default:
		return nil, util.ErrInvalidMergeStrategy
	}

	sourceBranch, err := s.loadBranch(sourceBranchID)
	if err != nil {
		return nil, err
	}
	targetBranch, err := s.loadBranch(targetBranchID)
	if err != nil {
		return nil, err
	}

	sourceVersion, err := s.latestOn(sourceBranch)
	if err != nil {
		return nil, err
	}
	targetVersion, err := s.latestOn(targetBranch)
	if err != nil {
		return nil, err
	}

	conflicts := treediff.DetectConflicts(sourceVersion.Content, targetVersion.Content)

	merge := &model.VersionMerge{
		SourceBranchID:  sourceBranch.ID,
		TargetBranchID:  targetBranch.ID,
		SourceVersionID: sourceVersion.ID,
		TargetVersionID: targetVersion.ID,
		Strategy:        strategy,
		MergedBy:        userID,
	}

	if len(conflicts) > 0 && strategy == treediff.StrategyManual {
		merge.Status = model.MergeConflicts
		merge.Conflicts = conflicts
		if err := s.MergeRepo.Create(merge); err != nil {
			return nil, err
		}
		monitoring.MergeCounter.WithLabelValues(string(strategy), "conflicts").Inc()
		logger.Log.Info("merge left for manual resolution",
			zap.String("mergeId", merge.ID),
			zap.Int("conflicts", len(conflicts)))
		return merge, nil
	}

	changelog := fmt.Sprintf("合并分支 %s 到 %s（策略 %s）", sourceBranch.Name, targetBranch.Name, strategy)

	switch {
	case len(conflicts) == 0 || strategy == treediff.StrategyAuto:
		mergedTree := treediff.AutoMerge(sourceVersion.Content, targetVersion.Content, strategy)
		result, err := s.Versions.CreateVersionOnBranch(targetBranch, mergedTree, userID,
			targetVersion.Title, targetVersion.Description, changelog, targetVersion.OrganizationID)
		if err != nil {
			return nil, err
		}
		merge.ResultVersionID = &result.ID
	case strategy == treediff.StrategyOurs:
		// 整体保留目标侧，不生成新版本
		merge.ResultVersionID = &targetVersion.ID
	case strategy == treediff.StrategyTheirs:
		content := model.ContentTree(treediff.CopyTree(sourceVersion.Content))
		result, err := s.Versions.CreateVersionOnBranch(targetBranch, content, userID,
			sourceVersion.Title, sourceVersion.Description, changelog, sourceVersion.OrganizationID)
		if err != nil {
			return nil, err
		}
		merge.ResultVersionID = &result.ID
	}

	merge.Status = model.MergeCompleted
	if err := s.MergeRepo.Create(merge); err != nil {
		return nil, err
	}

	sourceBranch.MergedIntoBranchID = &targetBranch.ID
	sourceBranch.MergeResultVersionID = merge.ResultVersionID
	if err := s.BranchRepo.Save(sourceBranch); err != nil {
		return nil, err
	}

	monitoring.MergeCounter.WithLabelValues(string(strategy), "completed").Inc()
	logger.Log.Info("branches merged",
		zap.String("mergeId", merge.ID),
		zap.String("sourceBranch", sourceBranch.Name),
		zap.String("targetBranch", targetBranch.Name),
		zap.String("strategy", string(strategy)))

	return merge, nil
}

// GetTargetBranchMerges 分支作为合并目标的历史合并记录
func (s *MergeService) GetTargetBranchMerges(branchID uint) ([]model.VersionMerge, error) {
	if _, err := s.loadBranch(branchID); err != nil {
		return nil, err
	}
	return s.MergeRepo.GetForTargetBranch(branchID)
}

// GetMerge 按 ID 取合并记录
func (s *MergeService) GetMerge(mergeID string) (*model.VersionMerge, error) {
	merge, err := s.MergeRepo.FindByID(mergeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMergeNotFound
		}
		return nil, err
	}
	return merge, nil
}

func (s *MergeService) loadVersion(versionID uint) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}

func (s *MergeService) loadBranch(branchID uint) (*model.VersionBranch, error) {
	branch, err := s.BranchRepo.FindByID(branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrBranchNotFound
		}
		return nil, err
	}
	return branch, nil
}

func (s *MergeService) latestOn(branch *model.VersionBranch) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.GetLatest(branch.EntityType, branch.EntityID, branch.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}
