// 补建 main 分支记录脚本
//
// 历史数据里 main 分支上的版本可以没有分支记录，合并进 main 需要按
// 分支 ID 寻址，本脚本为所有只有版本没有 main 分支记录的实体补建记录。
//
// 用法: go run scripts/backfill_main_branches.go
package main

import (
	"log"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/database"
	"edu_content_backend/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	type entity struct {
		EntityType string
		EntityID   uint
		CreatedBy  uint
	}

	var entities []entity
	err = db.Model(&model.ContentVersion{}).
		Select("entity_type, entity_id, MIN(created_by) AS created_by").
		Where("branch = ?", util.MainBranch).
		Group("entity_type, entity_id").
		Scan(&entities).Error
	if err != nil {
		log.Fatalf("查询实体失败: %v", err)
	}

	created := 0
	for _, e := range entities {
		var existing model.VersionBranch
		err := db.Where("entity_type = ? AND entity_id = ? AND name = ?",
			e.EntityType, e.EntityID, util.MainBranch).
			First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Fatalf("查询分支记录失败: %v", err)
		}

		branch := &model.VersionBranch{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Name:       util.MainBranch,
			IsActive:   true,
			CreatedBy:  e.CreatedBy,
		}
		if err := db.Create(branch).Error; err != nil {
			log.Fatalf("补建 main 分支记录失败 (%s/%d): %v", e.EntityType, e.EntityID, err)
		}
		created++
	}

	log.Printf("完成：共检查 %d 个实体，补建 %d 条 main 分支记录", len(entities), created)
}
