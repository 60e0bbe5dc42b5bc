package market

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapTrade/chain/chainclient"
	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/model"
	"github.com/ProjectsTask/EasySwapTrade/order"
	"github.com/ProjectsTask/EasySwapTrade/ordermanager"
	"github.com/ProjectsTask/EasySwapTrade/registry"
)

// 结算相关错误
var (
	ErrOrderExpired              = errors.New("order expired")                   // 订单已过期
	ErrInvalidOrder              = errors.New("invalid order")                   // nonce 已被取消或消费
	ErrSellerNotOwner            = errors.New("seller is not owner")             // 卖方不再持有该 NFT
	ErrOrderCreatorCannotExecute = errors.New("order creator cannot execute")    // 不允许自成交
	ErrPaymentMismatch           = errors.New("payment mismatch")                // 原生币支付金额不符
	ErrCurrencyMismatch          = errors.New("currency mismatch")               // 币种与支付方式不匹配
	ErrAssetNotApproved          = errors.New("asset not approved for transfer") // NFT 授权缺失或 ERC-20 额度不足
	ErrInsufficientFunds         = errors.New("insufficient funds")              // 付款方余额不足
)

// Marketplace 结算引擎
// 串联准入注册表 / nonce 账本 / 签名校验 / 链上资产操作,
// 对外暴露挂单执行, 出价接受与两种取消入口
//
// 校验-生效-交互次序: 全部校验通过且 nonce 消费完成后才触达外部资产合约,
// nonce 账本充当 (user, nonce) 维度的互斥闸门, 同一签名订单至多成交一次
type Marketplace struct {
	domain *order.Domain
	reg    *registry.Registry
	nonces *ordermanager.OrderManager
	chain  chainclient.ChainClient

	emit func(*model.Activity) // 可选: 事件上报
	now  func() int64          // 时钟, 测试可替换

	mu sync.Mutex // 结算入口串行化, 保证校验与生效之间无并发写
}

// Option Marketplace 可选项
type Option func(*Marketplace)

// WithNotify 设置事件上报回调
func WithNotify(emit func(*model.Activity)) Option {
	return func(m *Marketplace) {
		m.emit = emit
	}
}

// WithClock 替换时钟 (测试用)
func WithClock(now func() int64) Option {
	return func(m *Marketplace) {
		m.now = now
	}
}

// New 创建结算引擎
func New(domain *order.Domain, reg *registry.Registry, nonces *ordermanager.OrderManager,
	chain chainclient.ChainClient, opts ...Option) *Marketplace {
	m := &Marketplace{
		domain: domain,
		reg:    reg,
		nonces: nonces,
		chain:  chain,
		now:    func() int64 { return time.Now().Unix() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Receipt 结算回执
type Receipt struct {
	Digest common.Hash // 订单 EIP-712 摘要
	Seller common.Address
	Buyer  common.Address
	Amount *big.Int // 成交总额
	Fee    *big.Int // 其中平台费
}

// ExecuteListing 执行卖家签名的挂单, caller 为买家
// payment 为随调用附带的原生币金额 (非原生币结算时必须为 0)
//
// 校验按固定顺序快速失败:
// 集合准入 -> 币种准入 -> 过期 -> nonce -> 卖家持有 -> 非自成交 -> 支付 -> 签名 -> 转账可行性
func (m *Marketplace) ExecuteListing(ctx context.Context, caller common.Address, l *order.Listing, payment *big.Int) (*Receipt, error) {
	if payment == nil {
		payment = big.NewInt(0)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 集合准入
	if !m.reg.IsAcceptedCollection(l.Collection) {
		return nil, errors.Wrapf(registry.ErrCollectionNotAccepted, "collection %s", l.Collection.Hex())
	}
	// 2. 币种准入
	if !m.reg.IsAcceptedCurrency(l.Currency) {
		return nil, errors.Wrapf(registry.ErrCurrencyNotAccepted, "currency %s", l.Currency.Hex())
	}
	// 3. 有效期, 边界取闭区间: now == expiry 时仍然有效
	if m.now() > int64(l.Expiry) {
		return nil, errors.Wrapf(ErrOrderExpired, "expiry %d", l.Expiry)
	}
	// 4. nonce 可用性, 每次都对账本现查
	if !m.nonces.IsValid(l.Seller, l.Nonce) {
		return nil, errors.Wrapf(ErrInvalidOrder, "nonce %d", l.Nonce)
	}
	// 5. 卖家必须仍是链上持有人
	owner, err := m.chain.OwnerOf(ctx, l.Collection, l.TokenID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on query owner")
	}
	if owner != l.Seller {
		return nil, errors.Wrapf(ErrSellerNotOwner, "owner %s, seller %s", owner.Hex(), l.Seller.Hex())
	}
	// 6. 禁止自成交
	if caller == l.Seller {
		return nil, errors.Wrap(ErrOrderCreatorCannotExecute, "caller is seller")
	}
	// 7. 支付校验
	if l.Currency == order.NativeCurrency {
		// 原生币结算依赖链客户端能代扣买家余额, 不支持时直接拒绝
		if !m.chain.CanSettleNative() {
			return nil, errors.Wrap(ErrCurrencyMismatch, "native settlement not supported by chain custody")
		}
		// 附带金额必须恰好等于订单价格
		if payment.Cmp(l.Amount) != 0 {
			return nil, errors.Wrapf(ErrPaymentMismatch, "payment %s, amount %s", payment.String(), l.Amount.String())
		}
	} else {
		// ERC-20: 不允许附带原生币
		if payment.Sign() != 0 {
			return nil, errors.Wrapf(ErrCurrencyMismatch, "unexpected native payment %s", payment.String())
		}
	}
	// 8. 签名: 按订单字段重算摘要并恢复签名人
	digest := order.HashListing(m.domain, l)
	if err := order.VerifySignature(digest, l.Sig, l.Seller); err != nil {
		return nil, err
	}
	// 9. 转账可行性: NFT 授权与买家付款能力在消费 nonce 之前确认,
	//    消费后的转账失败只剩外部状态竞争一种来源
	if err := m.checkTransferFeasible(ctx, l.Collection, l.Seller, caller, l.Currency, l.Amount); err != nil {
		return nil, err
	}

	// 生效: 先消费 nonce 再动资产, 防止嵌套调用重放同一订单
	if err := m.nonces.Consume(ctx, l.Seller, l.Nonce); err != nil {
		return nil, errors.Wrap(ErrInvalidOrder, err.Error())
	}

	// 费用: 整数向下取整, 余数归卖家
	fee, proceeds := m.splitFee(l.Amount)
	recipient := m.reg.Fee().Recipient

	// 交互: 买家付款 -> 平台费 -> NFT 过户, 全部放在状态变更之后
	// 任一转账失败则逆序冲正已完成的转账并释放 nonce, 不留部分效果
	var done []func() error
	abort := func(cause error) error {
		for i := len(done) - 1; i >= 0; i-- {
			if rerr := done[i](); rerr != nil {
				xzap.WithContext(ctx).Error("failed on revert transfer",
					zap.String("digest", digest.Hex()), zap.Error(rerr))
			}
		}
		m.nonces.Release(ctx, l.Seller, l.Nonce)
		return cause
	}

	if l.Currency == order.NativeCurrency {
		if err := m.chain.TransferNative(ctx, caller, l.Seller, proceeds); err != nil {
			return nil, abort(errors.Wrap(err, "failed on transfer native to seller"))
		}
		done = append(done, func() error { return m.chain.TransferNative(ctx, l.Seller, caller, proceeds) })
		if fee.Sign() > 0 {
			if err := m.chain.TransferNative(ctx, caller, recipient, fee); err != nil {
				return nil, abort(errors.Wrap(err, "failed on transfer native fee"))
			}
			done = append(done, func() error { return m.chain.TransferNative(ctx, recipient, caller, fee) })
		}
	} else {
		if err := m.chain.TransferERC20(ctx, l.Currency, caller, l.Seller, proceeds); err != nil {
			return nil, abort(errors.Wrap(err, "failed on transfer currency to seller"))
		}
		done = append(done, func() error { return m.chain.TransferERC20(ctx, l.Currency, l.Seller, caller, proceeds) })
		if fee.Sign() > 0 {
			if err := m.chain.TransferERC20(ctx, l.Currency, caller, recipient, fee); err != nil {
				return nil, abort(errors.Wrap(err, "failed on transfer currency fee"))
			}
			done = append(done, func() error { return m.chain.TransferERC20(ctx, l.Currency, recipient, caller, fee) })
		}
	}
	if err := m.chain.TransferNFT(ctx, l.Collection, l.Seller, caller, l.TokenID); err != nil {
		return nil, abort(errors.Wrap(err, "failed on transfer nft"))
	}

	m.notify(&model.Activity{
		EventType:  model.ActivityWalletPurchased,
		Digest:     digest.Hex(),
		Maker:      l.Seller.Hex(),
		Taker:      caller.Hex(),
		Collection: l.Collection.Hex(),
		Currency:   l.Currency.Hex(),
		TokenID:    l.TokenID.String(),
		Amount:     decimal.NewFromBigInt(l.Amount, 0),
		Fee:        decimal.NewFromBigInt(fee, 0),
		Nonce:      l.Nonce,
		EventTime:  m.now(),
	})
	xzap.WithContext(ctx).Info("listing executed",
		zap.String("seller", l.Seller.Hex()), zap.String("buyer", caller.Hex()),
		zap.String("token_id", l.TokenID.String()), zap.String("amount", l.Amount.String()))

	return &Receipt{Digest: digest, Seller: l.Seller, Buyer: caller, Amount: l.Amount, Fee: fee}, nil
}

// AcceptOffer 接受买家签名的出价, caller 为 NFT 当前持有人
// 与 ExecuteListing 镜像: 买卖角色互换, nonce 与签名都落在买家维度,
// 买家以 ERC-20 付款 (买家无法随签名托管原生币, 原生币出价直接拒绝)
func (m *Marketplace) AcceptOffer(ctx context.Context, caller common.Address, o *order.Offer) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 集合准入
	if !m.reg.IsAcceptedCollection(o.Collection) {
		return nil, errors.Wrapf(registry.ErrCollectionNotAccepted, "collection %s", o.Collection.Hex())
	}
	// 2. 币种准入; 出价必须用 ERC-20 结算
	if o.Currency == order.NativeCurrency {
		return nil, errors.Wrap(ErrCurrencyMismatch, "offer cannot settle in native currency")
	}
	if !m.reg.IsAcceptedCurrency(o.Currency) {
		return nil, errors.Wrapf(registry.ErrCurrencyNotAccepted, "currency %s", o.Currency.Hex())
	}
	// 3. 有效期 (闭区间)
	if m.now() > int64(o.Expiry) {
		return nil, errors.Wrapf(ErrOrderExpired, "expiry %d", o.Expiry)
	}
	// 4. 买家维度的 nonce
	if !m.nonces.IsValid(o.Buyer, o.Nonce) {
		return nil, errors.Wrapf(ErrInvalidOrder, "nonce %d", o.Nonce)
	}
	// 5. caller 必须是链上持有人 (扮演卖方角色)
	owner, err := m.chain.OwnerOf(ctx, o.Collection, o.TokenID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on query owner")
	}
	if owner != caller {
		return nil, errors.Wrapf(ErrSellerNotOwner, "owner %s, caller %s", owner.Hex(), caller.Hex())
	}
	// 6. 禁止自成交
	if caller == o.Buyer {
		return nil, errors.Wrap(ErrOrderCreatorCannotExecute, "caller is buyer")
	}
	// 7. 签名恢复到买家
	digest := order.HashOffer(m.domain, o)
	if err := order.VerifySignature(digest, o.Sig, o.Buyer); err != nil {
		return nil, err
	}
	// 8. 转账可行性: 持有人授权与买家付款能力在消费 nonce 之前确认
	if err := m.checkTransferFeasible(ctx, o.Collection, caller, o.Buyer, o.Currency, o.Amount); err != nil {
		return nil, err
	}

	// 生效: 消费买家 nonce
	if err := m.nonces.Consume(ctx, o.Buyer, o.Nonce); err != nil {
		return nil, errors.Wrap(ErrInvalidOrder, err.Error())
	}

	// 费用向下取整, 余数归收款的持有人
	fee, proceeds := m.splitFee(o.Amount)
	recipient := m.reg.Fee().Recipient

	// 交互: 买家付款给持有人 -> 平台费 -> NFT 过户给买家
	// 任一转账失败则逆序冲正已完成的转账并释放 nonce, 不留部分效果
	var done []func() error
	abort := func(cause error) error {
		for i := len(done) - 1; i >= 0; i-- {
			if rerr := done[i](); rerr != nil {
				xzap.WithContext(ctx).Error("failed on revert transfer",
					zap.String("digest", digest.Hex()), zap.Error(rerr))
			}
		}
		m.nonces.Release(ctx, o.Buyer, o.Nonce)
		return cause
	}

	if err := m.chain.TransferERC20(ctx, o.Currency, o.Buyer, caller, proceeds); err != nil {
		return nil, abort(errors.Wrap(err, "failed on transfer currency to owner"))
	}
	done = append(done, func() error { return m.chain.TransferERC20(ctx, o.Currency, caller, o.Buyer, proceeds) })
	if fee.Sign() > 0 {
		if err := m.chain.TransferERC20(ctx, o.Currency, o.Buyer, recipient, fee); err != nil {
			return nil, abort(errors.Wrap(err, "failed on transfer currency fee"))
		}
		done = append(done, func() error { return m.chain.TransferERC20(ctx, o.Currency, recipient, o.Buyer, fee) })
	}
	if err := m.chain.TransferNFT(ctx, o.Collection, caller, o.Buyer, o.TokenID); err != nil {
		return nil, abort(errors.Wrap(err, "failed on transfer nft"))
	}

	m.notify(&model.Activity{
		EventType:  model.ActivityOfferAccepted,
		Digest:     digest.Hex(),
		Maker:      o.Buyer.Hex(),
		Taker:      caller.Hex(),
		Collection: o.Collection.Hex(),
		Currency:   o.Currency.Hex(),
		TokenID:    o.TokenID.String(),
		Amount:     decimal.NewFromBigInt(o.Amount, 0),
		Fee:        decimal.NewFromBigInt(fee, 0),
		Nonce:      o.Nonce,
		EventTime:  m.now(),
	})
	xzap.WithContext(ctx).Info("offer accepted",
		zap.String("buyer", o.Buyer.Hex()), zap.String("owner", caller.Hex()),
		zap.String("token_id", o.TokenID.String()), zap.String("amount", o.Amount.String()))

	return &Receipt{Digest: digest, Seller: caller, Buyer: o.Buyer, Amount: o.Amount, Fee: fee}, nil
}

// CancelOrders 调用方批量取消自己的 nonce
func (m *Marketplace) CancelOrders(ctx context.Context, caller common.Address, nonces []uint64) error {
	if err := m.nonces.CancelOrders(ctx, caller, nonces); err != nil {
		return err
	}

	parts := make([]string, 0, len(nonces))
	for _, n := range nonces {
		parts = append(parts, strconv.FormatUint(n, 10))
	}
	m.notify(&model.Activity{
		EventType: model.ActivityOrdersCancelled,
		Maker:     caller.Hex(),
		Nonces:    strings.Join(parts, ","),
		EventTime: m.now(),
	})
	return nil
}

// CancelAllOrders 调用方抬升自己的批量取消水位线
func (m *Marketplace) CancelAllOrders(ctx context.Context, caller common.Address, minNonce uint64) error {
	if err := m.nonces.CancelAllBelow(ctx, caller, minNonce); err != nil {
		return err
	}

	m.notify(&model.Activity{
		EventType: model.ActivityAllOrdersBelow,
		Maker:     caller.Hex(),
		MinNonce:  minNonce,
		EventTime: m.now(),
	})
	return nil
}

// checkTransferFeasible 结算前确认双方资产随时可划转:
// owner 已把 collection 授权给市场, payer 的余额与额度覆盖 amount
func (m *Marketplace) checkTransferFeasible(ctx context.Context, collection, owner, payer, currency common.Address, amount *big.Int) error {
	approved, err := m.chain.IsApprovedForAll(ctx, collection, owner)
	if err != nil {
		return errors.Wrap(err, "failed on query nft approval")
	}
	if !approved {
		return errors.Wrapf(ErrAssetNotApproved, "collection %s not approved by %s", collection.Hex(), owner.Hex())
	}
	if currency == order.NativeCurrency {
		balance, err := m.chain.NativeBalance(ctx, payer)
		if err != nil {
			return errors.Wrap(err, "failed on query native balance")
		}
		if balance.Cmp(amount) < 0 {
			return errors.Wrapf(ErrInsufficientFunds, "balance %s, amount %s", balance.String(), amount.String())
		}
		return nil
	}
	balance, err := m.chain.BalanceOf(ctx, currency, payer)
	if err != nil {
		return errors.Wrap(err, "failed on query currency balance")
	}
	if balance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "balance %s, amount %s", balance.String(), amount.String())
	}
	allowance, err := m.chain.Allowance(ctx, currency, payer)
	if err != nil {
		return errors.Wrap(err, "failed on query currency allowance")
	}
	if allowance.Cmp(amount) < 0 {
		return errors.Wrapf(ErrAssetNotApproved, "allowance %s, amount %s", allowance.String(), amount.String())
	}
	return nil
}

// splitFee 按当前费率拆分成交金额
// fee = amount * rate / precision (整数除法向下取整), 余数并入卖方所得
func (m *Marketplace) splitFee(amount *big.Int) (fee, proceeds *big.Int) {
	cfg := m.reg.Fee()
	fee = new(big.Int).Mul(amount, new(big.Int).SetUint64(cfg.Rate))
	fee.Div(fee, new(big.Int).SetUint64(cfg.Precision))
	proceeds = new(big.Int).Sub(amount, fee)
	return fee, proceeds
}

// notify 事件上报, 回调未设置时丢弃
func (m *Marketplace) notify(a *model.Activity) {
	if m.emit != nil {
		m.emit(a)
	}
}
