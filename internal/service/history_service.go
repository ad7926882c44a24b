package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const currentVersionCacheTTL = 5 * time.Minute

func currentVersionCacheKey(entityType string, entityID uint) string {
	return fmt.Sprintf("content:current:%s:%d", entityType, entityID)
}

// HistoryService 面向看板的只读聚合查询
type HistoryService struct {
	VersionRepo  *repository.VersionRepository
	BranchRepo   *repository.BranchRepository
	ApprovalRepo *repository.ApprovalRepository
	Redis        *redis.Client
}

func NewHistoryService(versionRepo *repository.VersionRepository, branchRepo *repository.BranchRepository, approvalRepo *repository.ApprovalRepository, rdb *redis.Client) *HistoryService {
	return &HistoryService{
		VersionRepo:  versionRepo,
		BranchRepo:   branchRepo,
		ApprovalRepo: approvalRepo,
		Redis:        rdb,
	}
}

// GetVersionHistory 分页版本历史，branch 为空时跨分支
func (s *HistoryService) GetVersionHistory(entityType string, entityID uint, branch string, page, limit int) ([]model.ContentVersion, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = util.DefaultHistoryPageSize
	}
	return s.VersionRepo.GetHistory(entityType, entityID, branch, page, limit)
}

// GetCurrentVersion 实体当前生效版本（main 分支最新已发布），带 Redis 缓存
func (s *HistoryService) GetCurrentVersion(ctx context.Context, entityType string, entityID uint) (*model.ContentVersion, error) {
	key := currentVersionCacheKey(entityType, entityID)

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, key).Result()
		if err == nil {
			var version model.ContentVersion
			if err := json.Unmarshal([]byte(cached), &version); err == nil {
				return &version, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("current version cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	version, err := s.VersionRepo.GetCurrentPublished(entityType, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(version); err == nil {
			if err := s.Redis.Set(ctx, key, payload, currentVersionCacheTTL).Err(); err != nil {
				logger.Log.Warn("current version cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return version, nil
}

// GetPendingReviews 按实体类型/组织过滤的待审队列
func (s *HistoryService) GetPendingReviews(entityType string, orgID *uint) ([]model.ContentVersion, error) {
	return s.VersionRepo.GetByStatus(model.StatusPendingReview, entityType, orgID)
}

// ReviewQueueItem 审核人个人队列中的一项
type ReviewQueueItem struct {
	Approval model.VersionApproval `json:"approval"`
	Version  *model.ContentVersion `json:"version,omitempty"`
}

// GetReviewerQueue 审核人的个人待办：pending 的分配记录及其版本
func (s *HistoryService) GetReviewerQueue(reviewerID uint) ([]ReviewQueueItem, error) {
	approvals, err := s.ApprovalRepo.GetPendingForReviewer(reviewerID)
	if err != nil {
		return nil, err
	}

	items := make([]ReviewQueueItem, 0, len(approvals))
	for _, approval := range approvals {
		item := ReviewQueueItem{Approval: approval}
		version, err := s.VersionRepo.FindByID(approval.VersionID)
		if err == nil {
			item.Version = version
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetHistorySummary 历史概览投影
func (s *HistoryService) GetHistorySummary(entityType string, entityID uint) (*repository.HistorySummary, error) {
	return s.VersionRepo.GetHistorySummary(entityType, entityID)
}

// GetBranches 实体的分支列表，默认不含已关闭分支
func (s *HistoryService) GetBranches(entityType string, entityID uint, includeClosed bool) ([]model.VersionBranch, error) {
	return s.BranchRepo.GetEntityBranches(entityType, entityID, includeClosed)
}
