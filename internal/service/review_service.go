package service

import (
	"errors"
	"time"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReviewService 审核流程：分配审核人、记录逐人决定
type ReviewService struct {
	VersionRepo  *repository.VersionRepository
	ApprovalRepo *repository.ApprovalRepository
}

func NewReviewService(versionRepo *repository.VersionRepository, approvalRepo *repository.ApprovalRepository) *ReviewService {
	return &ReviewService{
		VersionRepo:  versionRepo,
		ApprovalRepo: approvalRepo,
	}
}

// AssignReviewer 给待审版本分配审核人，重复分配返回已有记录
func (s *ReviewService) AssignReviewer(versionID, reviewerID uint) (*model.VersionApproval, error) {
	version, err := s.loadVersion(versionID)
	if err != nil {
		return nil, err
	}
	if version.Status != model.StatusPendingReview {
		return nil, util.ErrInvalidApproval
	}

	existing, err := s.ApprovalRepo.FindByVersionAndReviewer(versionID, reviewerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	approval := &model.VersionApproval{
		VersionID:  versionID,
		ReviewerID: reviewerID,
		Status:     model.ApprovalPending,
	}
	if err := s.ApprovalRepo.Create(approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// StartReview 审核人开始审核，版本进入 in_review
func (s *ReviewService) StartReview(versionID, reviewerID uint) (*model.ContentVersion, error) {
	version, err := s.loadVersion(versionID)
	if err != nil {
		return nil, err
	}
	if !version.Status.CanTransitionTo(model.StatusInReview) {
		return nil, util.ErrInvalidVersionTransition
	}

	version.Status = model.StatusInReview
	if err := s.VersionRepo.Save(version); err != nil {
		return nil, err
	}

	logger.Log.Info("review started",
		zap.Uint("versionId", versionID),
		zap.Uint("reviewerId", reviewerID))
	return version, nil
}

// Approve 审核通过，版本进入 approved，同步更新审核人的决定记录
func (s *ReviewService) Approve(versionID, reviewerID uint, notes string) (*model.ContentVersion, error) {
	return s.decide(versionID, reviewerID, model.StatusApproved, model.ApprovalApproved, notes)
}

// Reject 审核驳回，版本进入 rejected，作者需重新编辑提交
func (s *ReviewService) Reject(versionID, reviewerID uint, notes string) (*model.ContentVersion, error) {
	return s.decide(versionID, reviewerID, model.StatusRejected, model.ApprovalRejected, notes)
}

func (s *ReviewService) decide(versionID, reviewerID uint, next model.VersionStatus, approvalStatus model.ApprovalStatus, notes string) (*model.ContentVersion, error) {
	version, err := s.loadVersion(versionID)
	if err != nil {
		return nil, err
	}
	if !version.Status.CanTransitionTo(next) {
		return nil, util.ErrInvalidVersionTransition
	}

	version.Status = next
	if err := s.VersionRepo.Save(version); err != nil {
		return nil, err
	}

	if _, err := s.upsertApproval(versionID, reviewerID, approvalStatus, notes, nil); err != nil {
		return nil, err
	}
	return version, nil
}

// RequestChanges 记录修改意见，不改变版本自身状态
func (s *ReviewService) RequestChanges(versionID, reviewerID uint, changes []string, notes string) (*model.VersionApproval, error) {
	version, err := s.loadVersion(versionID)
	if err != nil {
		return nil, err
	}
	if version.Status != model.StatusPendingReview && version.Status != model.StatusInReview {
		return nil, util.ErrInvalidApproval
	}

	return s.upsertApproval(versionID, reviewerID, model.ApprovalChangesRequested, notes, changes)
}

// upsertApproval 更新审核人的决定记录，没有分配记录时现场补建
func (s *ReviewService) upsertApproval(versionID, reviewerID uint, status model.ApprovalStatus, notes string, changes []string) (*model.VersionApproval, error) {
	approval, err := s.ApprovalRepo.FindByVersionAndReviewer(versionID, reviewerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		approval = &model.VersionApproval{
			VersionID:  versionID,
			ReviewerID: reviewerID,
		}
	}

	now := time.Now()
	approval.Status = status
	approval.DecisionNotes = notes
	if changes != nil {
		approval.RequestedChanges = changes
	}
	approval.DecidedAt = &now

	if err := s.ApprovalRepo.Save(approval); err != nil {
		return nil, err
	}
	return approval, nil
}

// GetApprovals 版本的全部审核记录
func (s *ReviewService) GetApprovals(versionID uint) ([]model.VersionApproval, error) {
	if _, err := s.loadVersion(versionID); err != nil {
		return nil, err
	}
	return s.ApprovalRepo.GetForVersion(versionID)
}

func (s *ReviewService) loadVersion(versionID uint) (*model.ContentVersion, error) {
	version, err := s.VersionRepo.FindByID(versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}
