package database

import (
	"fmt"
	"log"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = AutoMigrate(db)
	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.ContentVersion{},
		&model.VersionBranch{},
		&model.VersionDiff{},
		&model.VersionApproval{},
		&model.ContentLock{},
		&model.VersionMerge{},
	)
}
