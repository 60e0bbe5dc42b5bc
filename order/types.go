package order

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeCurrency 原生币的哨兵地址
// Currency 字段为零地址时表示使用原生币结算
var NativeCurrency = common.Address{}

// Order 订单的价格/资产条款, 挂单与出价共用
// 一经签名即不可变, 订单身份由其字段的 EIP-712 哈希唯一确定
type Order struct {
	Collection common.Address // NFT 合约地址
	Currency   common.Address // 结算币种地址, 零地址表示原生币
	TokenID    *big.Int       // Token ID
	Amount     *big.Int       // 价格, 最小计价单位的整数
	Expiry     uint64         // 绝对过期时间戳 (秒), 超过后订单作废
}

// Signature 对类型化哈希的原始签名 (v, r, s)
type Signature struct {
	V uint8    // 恢复标识, 27 或 28
	R [32]byte // 签名 r 分量
	S [32]byte // 签名 s 分量
}

// Listing 卖家签名的挂单
// 生命周期: 链下签名创建 -> 最多被 ExecuteListing 消费一次
// 通过 nonce 取消或 NFT 易主后失效
type Listing struct {
	Order
	Seller common.Address // 卖家地址, 执行时必须等于 NFT 当前持有人
	Nonce  uint64         // 卖家维度的序列号
	Sig    Signature      // 卖家对 (Order 字段 + nonce) 类型化哈希的签名
}

// Offer 买家签名的出价, 结构与 Listing 对称
// 只能由 NFT 当前持有人通过 AcceptOffer 消费
type Offer struct {
	Order
	Buyer common.Address // 买家地址
	Nonce uint64         // 买家维度的序列号
	Sig   Signature      // 买家签名
}
