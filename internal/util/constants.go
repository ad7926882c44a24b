package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 版本控制相关常量
const (
	MainBranch             = "main"
	DefaultLockMinutes     = 30
	DefaultHistoryPageSize = 20
	SnapshotContentType    = "application/json"
)
