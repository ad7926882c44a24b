package service

import (
	"errors"
	"time"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// LockService 实体级编辑锁。锁是协作式的：写路径在落库前检查他人持锁，
// 获取锁本身不检查已有锁，唯一性由持久层约束与否决定。
type LockService struct {
	VersionRepo *repository.VersionRepository
	LockRepo    *repository.LockRepository
}

func NewLockService(versionRepo *repository.VersionRepository, lockRepo *repository.LockRepository) *LockService {
	return &LockService{
		VersionRepo: versionRepo,
		LockRepo:    lockRepo,
	}
}

// AcquireLock 在实体上声明编辑锁，要求实体至少存在一个版本
func (s *LockService) AcquireLock(entityType string, entityID, userID uint, reason string, durationMinutes int) (*model.ContentLock, error) {
	if durationMinutes <= 0 {
		durationMinutes = util.DefaultLockMinutes
	}

	latest, err := s.VersionRepo.GetLatest(entityType, entityID, util.MainBranch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrVersionNotFound
		}
		return nil, err
	}

	now := time.Now()
	lock := &model.ContentLock{
		EntityType: entityType,
		EntityID:   entityID,
		VersionID:  latest.ID,
		LockedBy:   userID,
		Reason:     reason,
		AcquiredAt: now,
		ExpiresAt:  now.Add(time.Duration(durationMinutes) * time.Minute),
	}
	if err := s.LockRepo.Create(lock); err != nil {
		return nil, err
	}

	monitoring.LockCounter.WithLabelValues("acquire").Inc()
	return lock, nil
}

// ReleaseLock 仅锁持有者可释放
func (s *LockService) ReleaseLock(lockID string, userID uint) error {
	lock, err := s.loadActiveLock(lockID)
	if err != nil {
		return err
	}
	if lock.LockedBy != userID {
		return util.ErrLockNotOwner
	}

	if err := s.LockRepo.Release(lock, time.Now()); err != nil {
		return err
	}
	monitoring.LockCounter.WithLabelValues("release").Inc()
	return nil
}

// RefreshLock 心跳续期，仅锁持有者可刷新
func (s *LockService) RefreshLock(lockID string, userID uint, durationMinutes int) (*model.ContentLock, error) {
	if durationMinutes <= 0 {
		durationMinutes = util.DefaultLockMinutes
	}

	lock, err := s.loadActiveLock(lockID)
	if err != nil {
		return nil, err
	}
	if lock.LockedBy != userID {
		return nil, util.ErrLockNotOwner
	}

	lock.ExpiresAt = time.Now().Add(time.Duration(durationMinutes) * time.Minute)
	if err := s.LockRepo.Save(lock); err != nil {
		return nil, err
	}
	return lock, nil
}

// LockStatus 实体当前的锁定情况
type LockStatus struct {
	Locked bool               `json:"locked"`
	Lock   *model.ContentLock `json:"lock,omitempty"`
}

// CheckLockStatus 查询实体编辑是否被锁定
func (s *LockService) CheckLockStatus(entityType string, entityID uint) (*LockStatus, error) {
	lock, err := s.LockRepo.GetActiveLock(entityType, entityID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LockStatus{Locked: false}, nil
		}
		return nil, err
	}
	return &LockStatus{Locked: true, Lock: lock}, nil
}

func (s *LockService) loadActiveLock(lockID string) (*model.ContentLock, error) {
	lock, err := s.LockRepo.FindByID(lockID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLockNotFound
		}
		return nil, err
	}
	if !lock.Active(time.Now()) {
		return nil, util.ErrLockNotFound
	}
	return lock, nil
}
