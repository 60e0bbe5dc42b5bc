package ordermanager

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/model"
	"github.com/ProjectsTask/EasySwapTrade/stores/xkv"
)

// 账本相关错误
var (
	ErrArrayEmpty            = errors.New("nonce array is empty")     // 批量取消传入空列表
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")  // nonce 已被取消/消费
	ErrNonceLowerThanCurrent = errors.New("nonce lower than current") // 水位线不是严格递增
)

// OrderManager 每用户的 nonce 取消账本
// 两层状态:
//   - floors: 批量取消水位线, 只有发起过批量取消的用户才有记录,
//     一旦存在, 小于等于水位线的 nonce 永久无效, 且水位线只增不减
//   - cancelled: 单独取消或被结算消费的 nonce 集合
//
// 内存是权威状态, 互斥锁保证 "每个 (user, nonce) 至多结算一次";
// db/kv 为可选的持久化与缓存层, 写失败只记日志不回滚内存
type OrderManager struct {
	ctx     context.Context
	mu      sync.RWMutex
	floors  map[common.Address]uint64
	cancels map[common.Address]map[uint64]struct{}

	db      *gorm.DB   // 可选: 状态落库, 重启恢复
	kv      *xkv.Store // 可选: 水位线缓存
	chain   string
	project string
}

// New 创建账本实例
// db 与 kv 允许为 nil (纯内存模式, 测试与本地开发使用)
func New(ctx context.Context, db *gorm.DB, kv *xkv.Store, chain string, project string) *OrderManager {
	return &OrderManager{
		ctx:     ctx,
		floors:  make(map[common.Address]uint64),
		cancels: make(map[common.Address]map[uint64]struct{}),
		db:      db,
		kv:      kv,
		chain:   chain,
		project: project,
	}
}

// Load 从数据库恢复账本状态, 服务启动时调用
func (m *OrderManager) Load(ctx context.Context) error {
	if m.db == nil {
		return nil
	}

	var floors []model.NonceFloor
	if err := m.db.WithContext(ctx).Find(&floors).Error; err != nil {
		return errors.Wrap(err, "failed on load nonce floors")
	}
	var cancels []model.CancelledNonce
	if err := m.db.WithContext(ctx).Find(&cancels).Error; err != nil {
		return errors.Wrap(err, "failed on load cancelled nonces")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range floors {
		m.floors[common.HexToAddress(f.User)] = f.MinNonce
	}
	for _, c := range cancels {
		user := common.HexToAddress(c.User)
		if m.cancels[user] == nil {
			m.cancels[user] = make(map[uint64]struct{})
		}
		m.cancels[user][c.Nonce] = struct{}{}
	}
	return nil
}

// IsValid 判断 nonce 是否仍可用于结算
// 规则: 未被单独取消/消费, 且 (若用户发起过批量取消) 大于水位线
// 水位线每次都现查现算, 不做任何缓存快照
func (m *OrderManager) IsValid(user common.Address, nonce uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isValidLocked(user, nonce)
}

func (m *OrderManager) isValidLocked(user common.Address, nonce uint64) bool {
	if floor, ok := m.floors[user]; ok && nonce <= floor {
		return false
	}
	if set, ok := m.cancels[user]; ok {
		if _, gone := set[nonce]; gone {
			return false
		}
	}
	return true
}

// Floor 返回用户当前的水位线, 未发起过批量取消时为 0
func (m *OrderManager) Floor(user common.Address) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.floors[user]
}

// CancelOrders 批量取消指定 nonce
// 整批校验通过后才落账: 任一 nonce 已被取消则整批失败, 不产生部分效果
func (m *OrderManager) CancelOrders(ctx context.Context, user common.Address, nonces []uint64) error {
	if len(nonces) == 0 {
		return ErrArrayEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// 先整批校验 (包含列表内部重复)
	seen := make(map[uint64]struct{}, len(nonces))
	for _, n := range nonces {
		if _, dup := seen[n]; dup {
			return errors.Wrapf(ErrOrderAlreadyCancelled, "nonce %d", n)
		}
		seen[n] = struct{}{}
		if set, ok := m.cancels[user]; ok {
			if _, gone := set[n]; gone {
				return errors.Wrapf(ErrOrderAlreadyCancelled, "nonce %d", n)
			}
		}
	}

	// 再整批落账
	for _, n := range nonces {
		m.markCancelledLocked(ctx, user, n)
	}
	return nil
}

// CancelAllBelow 将水位线抬升至 minNonce, 使其以下 (含) 的全部 nonce 失效
// 水位线严格单调递增; minNonce 不高于当前水位线时拒绝
func (m *OrderManager) CancelAllBelow(ctx context.Context, user common.Address, minNonce uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 未发起过批量取消时当前水位线视为 0, 因此 minNonce 为 0 也会被拒绝
	if minNonce <= m.floors[user] {
		return errors.Wrapf(ErrNonceLowerThanCurrent, "min nonce %d, current floor %d", minNonce, m.floors[user])
	}
	m.floors[user] = minNonce

	if m.db != nil {
		err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_address"}},
			DoUpdates: clause.AssignmentColumns([]string{"min_nonce"}),
		}).Create(&model.NonceFloor{User: user.Hex(), MinNonce: minNonce}).Error
		if err != nil {
			xzap.WithContext(ctx).Warn("failed on persist nonce floor",
				zap.String("user", user.Hex()), zap.Uint64("min_nonce", minNonce), zap.Error(err))
		}
	}
	if m.kv != nil {
		key := fmt.Sprintf("cache:%s:%s:floor:%s", m.project, m.chain, user.Hex())
		if err := m.kv.WriteString(key, strconv.FormatUint(minNonce, 10), 0); err != nil {
			xzap.WithContext(ctx).Warn("failed on cache nonce floor", zap.String("user", user.Hex()), zap.Error(err))
		}
	}
	return nil
}

// Consume 结算成功路径上的 nonce 消费
// 消费等价于取消, 防止同一签名订单被重放; 不可用时报已取消
func (m *OrderManager) Consume(ctx context.Context, user common.Address, nonce uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isValidLocked(user, nonce) {
		return errors.Wrapf(ErrOrderAlreadyCancelled, "nonce %d", nonce)
	}
	m.markCancelledLocked(ctx, user, nonce)
	return nil
}

// Release 回滚一次结算消费, 重新使该 nonce 可用
// 仅用于结算补偿路径: 调用方保证该 nonce 刚被自己 Consume;
// 不触碰水位线, 水位线以下的 nonce 释放后依然无效
func (m *OrderManager) Release(ctx context.Context, user common.Address, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.cancels[user]; ok {
		delete(set, nonce)
	}

	if m.db != nil {
		err := m.db.WithContext(ctx).
			Where("user_address = ? AND nonce = ?", user.Hex(), nonce).
			Delete(&model.CancelledNonce{}).Error
		if err != nil {
			xzap.WithContext(ctx).Warn("failed on release cancelled nonce",
				zap.String("user", user.Hex()), zap.Uint64("nonce", nonce), zap.Error(err))
		}
	}
}

// markCancelledLocked 将 nonce 写入取消集合, 调用方必须持有写锁
func (m *OrderManager) markCancelledLocked(ctx context.Context, user common.Address, nonce uint64) {
	if m.cancels[user] == nil {
		m.cancels[user] = make(map[uint64]struct{})
	}
	m.cancels[user][nonce] = struct{}{}

	if m.db != nil {
		err := m.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.CancelledNonce{User: user.Hex(), Nonce: nonce}).Error
		if err != nil {
			xzap.WithContext(ctx).Warn("failed on persist cancelled nonce",
				zap.String("user", user.Hex()), zap.Uint64("nonce", nonce), zap.Error(err))
		}
	}
}
