package model

import (
	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderStatusFilled = "filled" // 已成交
)

// 订单方向
const (
	OrderSideListing = "listing" // 卖家挂单
	OrderSideOffer   = "offer"   // 买家出价
)

// OrderRecord 已结算订单的观测记录
// 订单本体是链下签名数据, 只有成交时服务才第一次看到它,
// 以摘要为唯一键落一条终态记录供查询与对账
type OrderRecord struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Digest     string          `gorm:"column:order_digest;uniqueIndex"`  // EIP-712 订单摘要
	Side       string          `gorm:"column:side"`                      // listing / offer
	Maker      string          `gorm:"column:maker;index"`               // 订单签名方
	Taker      string          `gorm:"column:taker"`                     // 订单执行方
	Collection string          `gorm:"column:collection_address;index"`  // NFT 合约地址
	Currency   string          `gorm:"column:currency_address"`          // 结算币种
	TokenID    string          `gorm:"column:token_id"`                  // Token ID
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(65,0)"` // 成交金额
	Fee        decimal.Decimal `gorm:"column:fee;type:decimal(65,0)"`    // 平台费
	Nonce      uint64          `gorm:"column:nonce"`                     // 订单 nonce
	Status     string          `gorm:"column:status"`                    // 订单状态
	EventTime  int64           `gorm:"column:event_time"`                // 成交时间戳 (秒)
}

// TableName 指定表名
func (OrderRecord) TableName() string {
	return "et_orders"
}
