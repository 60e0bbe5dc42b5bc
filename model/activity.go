package model

import (
	"github.com/shopspring/decimal"
)

// 活动事件类型, 持久化供链下索引器消费
const (
	ActivityOrdersCancelled   = "orders_cancelled"     // 批量取消指定 nonce
	ActivityAllOrdersBelow    = "all_orders_cancelled" // 水位线以下全部取消
	ActivityWalletPurchased   = "wallet_purchased"     // 挂单成交 (买家主动)
	ActivityOfferAccepted     = "offer_accepted"       // 出价被接受 (持有人主动)
	ActivityFeeChanged        = "fee_changed"          // 费率/收款人变更
	ActivityCurrencyAdded     = "currency_added"       // 新增结算币种
	ActivityCurrencyRemoved   = "currency_removed"     // 移除结算币种
	ActivityCollectionAdded   = "collection_added"     // 新增集合
	ActivityCollectionRemoved = "collection_removed"   // 移除集合
)

// Activity 市场活动记录
// 每次结算/取消/配置变更都会生成一条, 是对外索引的事件源
type Activity struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"` // 自增主键
	EventType  string          `gorm:"column:event_type;index"`            // 事件类型
	Digest     string          `gorm:"column:order_digest"`                // 订单摘要, 仅成交事件携带
	Maker      string          `gorm:"column:maker;index"`                 // 订单签名方 (卖家或买家)
	Taker      string          `gorm:"column:taker"`                       // 订单执行方
	Collection string          `gorm:"column:collection_address;index"`    // NFT 合约地址
	Currency   string          `gorm:"column:currency_address"`            // 结算币种, 空串表示原生币
	TokenID    string          `gorm:"column:token_id"`                    // Token ID (十进制串)
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(65,0)"`   // 成交金额 (最小计价单位)
	Fee        decimal.Decimal `gorm:"column:fee;type:decimal(65,0)"`      // 平台费
	Nonce      uint64          `gorm:"column:nonce"`                       // 订单 nonce
	Nonces     string          `gorm:"column:nonces"`                      // 批量取消的 nonce 列表 (逗号分隔)
	MinNonce   uint64          `gorm:"column:min_nonce"`                   // 批量取消的新水位线
	EventTime  int64           `gorm:"column:event_time;index"`            // 事件时间戳 (秒)
}

// TableName 指定表名
func (Activity) TableName() string {
	return "et_activities"
}
