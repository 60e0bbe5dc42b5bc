package registry

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapTrade/model"
	"github.com/ProjectsTask/EasySwapTrade/order"
)

// 准入与费率相关错误
var (
	ErrUnauthorized              = errors.New("caller is not admin")         // 非管理员调用管理接口
	ErrInvalidAddress            = errors.New("invalid address")             // 零地址
	ErrCurrencyAlreadyAccepted   = errors.New("currency already accepted")   // 重复添加币种
	ErrCurrencyNotAccepted       = errors.New("currency not accepted")       // 币种不在准入列表
	ErrCollectionAlreadyAccepted = errors.New("collection already accepted") // 重复添加集合
	ErrCollectionNotAccepted     = errors.New("collection not accepted")     // 集合不在准入列表
	ErrInvalidFee                = errors.New("invalid fee config")          // 费率超限或收款人非法
)

// FeePrecision 费率分母, 万分比
const FeePrecision uint64 = 10000

// FeeConfig 平台费配置
type FeeConfig struct {
	Rate      uint64         // 费率分子
	Precision uint64         // 费率分母, 固定为 FeePrecision
	Recipient common.Address // 平台费收款地址
}

// Registry 结算准入注册表
// 维护可结算币种与可交易集合两张准入表, 以及全局费率配置
// 全部变更走管理员门禁, 结算引擎在每次交易前查询
type Registry struct {
	mu          sync.RWMutex
	admin       common.Address
	currencies  map[common.Address]struct{}
	collections map[common.Address]struct{}
	fee         FeeConfig
	maxFeeRate  uint64 // 费率上限 (分子), 不超过 FeePrecision

	emit func(*model.Activity) // 可选: 事件上报
}

// Option Registry 可选项
type Option func(*Registry)

// WithNotify 设置事件上报回调
func WithNotify(emit func(*model.Activity)) Option {
	return func(r *Registry) {
		r.emit = emit
	}
}

// New 创建注册表
// 初始费率配置在构造时校验, 不合法直接报错
func New(admin common.Address, fee FeeConfig, maxFeeRate uint64, opts ...Option) (*Registry, error) {
	if maxFeeRate > FeePrecision {
		return nil, errors.Wrap(ErrInvalidFee, "max fee rate exceeds precision")
	}
	r := &Registry{
		admin:       admin,
		currencies:  make(map[common.Address]struct{}),
		collections: make(map[common.Address]struct{}),
		maxFeeRate:  maxFeeRate,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.setFeeLocked(fee); err != nil {
		return nil, err
	}
	return r, nil
}

// Admin 返回管理员地址
func (r *Registry) Admin() common.Address {
	return r.admin
}

// requireAdmin 管理接口门禁
func (r *Registry) requireAdmin(caller common.Address) error {
	if caller != r.admin {
		return errors.Wrapf(ErrUnauthorized, "caller %s", caller.Hex())
	}
	return nil
}

// AddCurrency 添加可结算币种
func (r *Registry) AddCurrency(caller, currency common.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if currency == (common.Address{}) {
		return errors.Wrap(ErrInvalidAddress, "currency is zero address")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.currencies[currency]; ok {
		return errors.Wrapf(ErrCurrencyAlreadyAccepted, "currency %s", currency.Hex())
	}
	r.currencies[currency] = struct{}{}
	r.notify(&model.Activity{
		EventType: model.ActivityCurrencyAdded,
		Currency:  currency.Hex(),
		EventTime: time.Now().Unix(),
	})
	return nil
}

// RemoveCurrency 移除可结算币种
func (r *Registry) RemoveCurrency(caller, currency common.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.currencies[currency]; !ok {
		return errors.Wrapf(ErrCurrencyNotAccepted, "currency %s", currency.Hex())
	}
	delete(r.currencies, currency)
	r.notify(&model.Activity{
		EventType: model.ActivityCurrencyRemoved,
		Currency:  currency.Hex(),
		EventTime: time.Now().Unix(),
	})
	return nil
}

// AddCollection 添加可交易集合
func (r *Registry) AddCollection(caller, collection common.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}
	if collection == (common.Address{}) {
		return errors.Wrap(ErrInvalidAddress, "collection is zero address")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[collection]; ok {
		return errors.Wrapf(ErrCollectionAlreadyAccepted, "collection %s", collection.Hex())
	}
	r.collections[collection] = struct{}{}
	r.notify(&model.Activity{
		EventType:  model.ActivityCollectionAdded,
		Collection: collection.Hex(),
		EventTime:  time.Now().Unix(),
	})
	return nil
}

// RemoveCollection 移除可交易集合
func (r *Registry) RemoveCollection(caller, collection common.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[collection]; !ok {
		return errors.Wrapf(ErrCollectionNotAccepted, "collection %s", collection.Hex())
	}
	delete(r.collections, collection)
	r.notify(&model.Activity{
		EventType:  model.ActivityCollectionRemoved,
		Collection: collection.Hex(),
		EventTime:  time.Now().Unix(),
	})
	return nil
}

// IsAcceptedCurrency 币种是否可结算
// 原生币 (零地址哨兵) 始终可结算, 准入表只管理 ERC-20
func (r *Registry) IsAcceptedCurrency(currency common.Address) bool {
	if currency == order.NativeCurrency {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.currencies[currency]
	return ok
}

// IsAcceptedCollection 集合是否可交易
func (r *Registry) IsAcceptedCollection(collection common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[collection]
	return ok
}

// Currencies 返回当前准入币种列表
func (r *Registry) Currencies() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.currencies))
	for c := range r.currencies {
		out = append(out, c)
	}
	return out
}

// Collections 返回当前准入集合列表
func (r *Registry) Collections() []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]common.Address, 0, len(r.collections))
	for c := range r.collections {
		out = append(out, c)
	}
	return out
}

// Fee 返回当前费率配置, 结算引擎每次成交时读取
func (r *Registry) Fee() FeeConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fee
}

// SetFee 更新费率配置
// 校验: 费率不超过上限, 收款人非零且与当前不同
func (r *Registry) SetFee(caller common.Address, rate uint64, recipient common.Address) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if recipient == r.fee.Recipient && rate == r.fee.Rate {
		return errors.Wrap(ErrInvalidFee, "fee config unchanged")
	}
	if err := r.setFeeLocked(FeeConfig{Rate: rate, Precision: FeePrecision, Recipient: recipient}); err != nil {
		return err
	}
	r.notify(&model.Activity{
		EventType: model.ActivityFeeChanged,
		Taker:     recipient.Hex(),
		Amount:    decimal.NewFromInt(int64(rate)),
		EventTime: time.Now().Unix(),
	})
	return nil
}

// setFeeLocked 校验并写入费率, 调用方持有写锁 (或尚未发布)
func (r *Registry) setFeeLocked(fee FeeConfig) error {
	if fee.Recipient == (common.Address{}) {
		return errors.Wrap(ErrInvalidFee, "fee recipient is zero address")
	}
	if fee.Rate > r.maxFeeRate {
		return errors.Wrapf(ErrInvalidFee, "fee rate %d exceeds max %d", fee.Rate, r.maxFeeRate)
	}
	fee.Precision = FeePrecision
	r.fee = fee
	return nil
}

// notify 事件上报, 回调未设置时丢弃
func (r *Registry) notify(a *model.Activity) {
	if r.emit != nil {
		r.emit(a)
	}
}
