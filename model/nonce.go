package model

// NonceFloor 用户的批量取消水位线快照
// 内存中的账本是权威状态, 该表用于进程重启后的状态恢复
type NonceFloor struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	User     string `gorm:"column:user_address;uniqueIndex"` // 用户地址
	MinNonce uint64 `gorm:"column:min_nonce"`                // 水位线, 小于等于该值的 nonce 全部无效
}

// TableName 指定表名
func (NonceFloor) TableName() string {
	return "et_nonce_floors"
}

// CancelledNonce 单个被取消/已消费的 nonce 记录
type CancelledNonce struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	User  string `gorm:"column:user_address;uniqueIndex:uidx_user_nonce"` // 用户地址
	Nonce uint64 `gorm:"column:nonce;uniqueIndex:uidx_user_nonce"`        // 被取消的 nonce
}

// TableName 指定表名
func (CancelledNonce) TableName() string {
	return "et_cancelled_nonces"
}
