package model

import "time"

// ContentLock 实体级排他编辑声明。过期是被动的：只有 now < expires_at
// 时锁才有效，没有后台清理任务。
// swagger:model ContentLock
type ContentLock struct {
	UUIDBase

	EntityType string     `gorm:"size:50;index:idx_lock_entity;not null" json:"entityType"`
	EntityID   uint       `gorm:"index:idx_lock_entity;type:bigint unsigned;not null" json:"entityId"`
	VersionID  uint       `gorm:"type:bigint unsigned" json:"versionId"`
	LockedBy   uint       `gorm:"index;type:bigint unsigned;not null" json:"lockedBy"`
	Reason     string     `gorm:"size:255" json:"reason"`
	AcquiredAt time.Time  `json:"acquiredAt"`
	ExpiresAt  time.Time  `gorm:"index" json:"expiresAt"`
	ReleasedAt *time.Time `json:"releasedAt,omitempty"`
}

func (ContentLock) TableName() string {
	return "content_locks"
}

// Active 锁是否仍然有效
func (l *ContentLock) Active(now time.Time) bool {
	return l.ReleasedAt == nil && now.Before(l.ExpiresAt)
}
