package main

import (
	"flag"
	"log"

	"edu_content_backend/internal/app"
	"edu_content_backend/internal/config"
	"edu_content_backend/pkg/configwatcher"
	"edu_content_backend/pkg/logger"
)

// @title 内容版本管理 API
// @version 1.0
// @description 教育内容平台的版本控制与协作审核服务
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	migrateOnly := flag.Bool("migrate-only", false, "仅执行数据库迁移后退出")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if cfg.MigrateOnly {
		logger.Log.Info("Migration finished, exiting")
		return
	}

	// 配置热加载
	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
