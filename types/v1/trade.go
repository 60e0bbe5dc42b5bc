package types

// SignatureParam 原始签名分量
// R/S 为 32 字节 hex 串 (0x 前缀可选), V 为 27/28
type SignatureParam struct {
	V uint8  `json:"v" binding:"required"`
	R string `json:"r" binding:"required"`
	S string `json:"s" binding:"required"`
}

// OrderParam 订单价格/资产条款
type OrderParam struct {
	Collection string `json:"collection" binding:"required,address"` // NFT 合约地址
	Currency   string `json:"currency"`                              // 结算币种, 空串或零地址表示原生币
	TokenID    string `json:"token_id" binding:"required"`           // Token ID (十进制串)
	Amount     string `json:"amount" binding:"required"`             // 价格, 最小计价单位整数串
	Expiry     uint64 `json:"expiry" binding:"required"`             // 过期时间戳 (秒)
}

// ExecuteListingParam 执行挂单请求
type ExecuteListingParam struct {
	Caller  string         `json:"caller" binding:"required,address"` // 买家地址
	Order   OrderParam     `json:"order" binding:"required"`
	Seller  string         `json:"seller" binding:"required,address"` // 挂单签名方
	Nonce   uint64         `json:"nonce"`
	Sig     SignatureParam `json:"signature" binding:"required"`
	Payment string         `json:"payment"` // 附带的原生币金额, 缺省为 0
}

// AcceptOfferParam 接受出价请求
type AcceptOfferParam struct {
	Caller string         `json:"caller" binding:"required,address"` // NFT 持有人地址
	Order  OrderParam     `json:"order" binding:"required"`
	Buyer  string         `json:"buyer" binding:"required,address"` // 出价签名方
	Nonce  uint64         `json:"nonce"`
	Sig    SignatureParam `json:"signature" binding:"required"`
}

// CancelOrdersParam 批量取消请求
type CancelOrdersParam struct {
	Caller string   `json:"caller" binding:"required,address"`
	Nonces []uint64 `json:"nonces"`
}

// CancelAllOrdersParam 水位线取消请求
type CancelAllOrdersParam struct {
	Caller   string `json:"caller" binding:"required,address"`
	MinNonce uint64 `json:"min_nonce"`
}

// TradeReceiptResp 结算回执
type TradeReceiptResp struct {
	Digest string `json:"digest"` // 订单摘要
	Seller string `json:"seller"`
	Buyer  string `json:"buyer"`
	Amount string `json:"amount"` // 成交总额
	Fee    string `json:"fee"`    // 平台费
}

// NonceStatusResp nonce 状态查询结果
type NonceStatusResp struct {
	User  string `json:"user"`
	Nonce uint64 `json:"nonce"`
	Valid bool   `json:"valid"` // 是否仍可用于结算
	Floor uint64 `json:"floor"` // 当前批量取消水位线
}

// OrderStatusResp 订单摘要状态查询结果
type OrderStatusResp struct {
	Digest    string `json:"digest"`
	Status    string `json:"status"` // filled; 未见过的摘要返回 unknown
	Side      string `json:"side,omitempty"`
	Maker     string `json:"maker,omitempty"`
	Taker     string `json:"taker,omitempty"`
	EventTime int64  `json:"event_time,omitempty"`
}

// FeeParam 费率变更请求
type FeeParam struct {
	Caller    string `json:"caller" binding:"required,address"`
	Rate      uint64 `json:"rate"`
	Recipient string `json:"recipient" binding:"required,address"`
}

// FeeResp 费率配置
type FeeResp struct {
	Rate      uint64 `json:"rate"`
	Precision uint64 `json:"precision"`
	Recipient string `json:"recipient"`
}

// AllowlistParam 准入表变更请求
type AllowlistParam struct {
	Caller  string `json:"caller" binding:"required,address"`
	Address string `json:"address" binding:"required,address"`
}
