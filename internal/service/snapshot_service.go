package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filename))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/exports/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("http://%s/%s/%s", p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

// SnapshotService 把版本内容树导出为 JSON 快照文件
type SnapshotService struct {
	provider StorageProvider
}

func NewSnapshotService(cfg *config.Config) (*SnapshotService, error) {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	return &SnapshotService{provider: provider}, nil
}

type snapshotDocument struct {
	EntityType    string            `json:"entityType"`
	EntityID      uint              `json:"entityId"`
	Branch        string            `json:"branch"`
	VersionNumber int               `json:"versionNumber"`
	Status        string            `json:"status"`
	Title         string            `json:"title"`
	ExportedAt    time.Time         `json:"exportedAt"`
	Content       model.ContentTree `json:"content"`
}

// ExportVersion 导出版本快照，返回可访问的 URL
func (s *SnapshotService) ExportVersion(ctx context.Context, version *model.ContentVersion) (string, error) {
	doc := snapshotDocument{
		EntityType:    version.EntityType,
		EntityID:      version.EntityID,
		Branch:        version.Branch,
		VersionNumber: version.VersionNumber,
		Status:        string(version.Status),
		Title:         version.Title,
		ExportedAt:    time.Now(),
		Content:       version.Content,
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("snapshots/%s/%d/v%d-%s.json",
		version.EntityType, version.EntityID, version.VersionNumber, model.GenerateUUID())

	return s.provider.Upload(ctx, filename, bytes.NewReader(payload), int64(len(payload)), util.SnapshotContentType)
}
