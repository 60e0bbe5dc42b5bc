package model

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Migrate 建表/补列
// 服务启动时调用一次, 幂等
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Activity{},
		&OrderRecord{},
		&NonceFloor{},
		&CancelledNonce{},
	); err != nil {
		return errors.Wrap(err, "failed on migrate tables")
	}
	return nil
}
