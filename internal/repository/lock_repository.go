package repository

import (
	"time"

	"edu_content_backend/internal/model"

	"gorm.io/gorm"
)

type LockRepository struct {
	DB *gorm.DB
}

func NewLockRepository(db *gorm.DB) *LockRepository {
	return &LockRepository{DB: db}
}

func (r *LockRepository) Create(lock *model.ContentLock) error {
	return r.DB.Create(lock).Error
}

func (r *LockRepository) Save(lock *model.ContentLock) error {
	return r.DB.Save(lock).Error
}

func (r *LockRepository) FindByID(id string) (*model.ContentLock, error) {
	var lock model.ContentLock
	err := r.DB.First(&lock, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

// GetActiveLock 实体上未释放且未过期的锁；过期只按时间戳判断，
// 没有主动清扫
func (r *LockRepository) GetActiveLock(entityType string, entityID uint, now time.Time) (*model.ContentLock, error) {
	var lock model.ContentLock
	err := r.DB.Where("entity_type = ? AND entity_id = ? AND released_at IS NULL AND expires_at > ?",
		entityType, entityID, now).
		Order("acquired_at DESC").
		First(&lock).Error
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *LockRepository) Release(lock *model.ContentLock, now time.Time) error {
	lock.ReleasedAt = &now
	return r.DB.Save(lock).Error
}
