package types

import (
	"github.com/shopspring/decimal"
)

// ActivityItem 活动记录
type ActivityItem struct {
	EventType  string          `json:"event_type"`
	Maker      string          `json:"maker"`
	Taker      string          `json:"taker,omitempty"`
	Collection string          `json:"collection,omitempty"`
	Currency   string          `json:"currency,omitempty"`
	TokenID    string          `json:"token_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	Nonce      uint64          `json:"nonce"`
	Nonces     string          `json:"nonces,omitempty"`
	MinNonce   uint64          `json:"min_nonce,omitempty"`
	EventTime  int64           `json:"event_time"`
}

// ActivitiesResp 活动分页查询结果
type ActivitiesResp struct {
	Result []ActivityItem `json:"result"`
	Count  int64          `json:"count"`
}
