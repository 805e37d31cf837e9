package app

import (
	"gorm.io/gorm"

	"github.com/markfender/transorder/internal/model"
)

// AutoMigrate 自动迁移数据表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Order{},
		&model.EscrowAccount{},
		&model.EscrowLog{},
		&model.ReceiptBalance{},
		&model.FeeRate{},
	)
}
