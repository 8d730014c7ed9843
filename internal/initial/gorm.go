package initial

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ShopRec/internal/config"
	catalogEntity "ShopRec/internal/modules/catalog/domain/entity"
	interactionEntity "ShopRec/internal/modules/interaction/domain/entity"
	userEntity "ShopRec/internal/modules/user/domain/entity"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitGorm 按配置打开数据库并自动迁移全部表
func InitGorm(conf *config.Config) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(conf.MysqlConfig.Driver)) {
	case "sqlite":
		dialector = sqlite.Open(conf.MysqlConfig.SqlitePath)
	default:
		m := conf.MysqlConfig
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			m.User, m.Password, m.Host, m.Port, m.DatabaseName)
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return db, nil
}

// OpenSQLite 打开 sqlite 并迁移，":memory:" 时限制为单连接保证所有查询看到同一个库
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate 如果没有建表，会自动创建对应的表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userEntity.User{},
		&catalogEntity.Product{},
		&catalogEntity.ProductEmbedding{},
		&interactionEntity.UserView{},
		&interactionEntity.UserCart{},
		&interactionEntity.UserSearch{},
	)
}
