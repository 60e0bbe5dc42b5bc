package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapTrade/stores/xkv"
)

// Dao 数据访问对象
// 封装数据库与 KV 存储, 所有落库逻辑收敛在该层
type Dao struct {
	ctx context.Context

	DB      *gorm.DB
	KvStore *xkv.Store
}

// New 创建 Dao 实例
func New(ctx context.Context, db *gorm.DB, kvStore *xkv.Store) *Dao {
	return &Dao{
		ctx:     ctx,
		DB:      db,
		KvStore: kvStore,
	}
}
