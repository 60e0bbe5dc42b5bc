package svc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapTrade/chain/chainclient"
	"github.com/ProjectsTask/EasySwapTrade/chain/chainmock"
	"github.com/ProjectsTask/EasySwapTrade/dao"
	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/market"
	"github.com/ProjectsTask/EasySwapTrade/model"
	"github.com/ProjectsTask/EasySwapTrade/order"
	"github.com/ProjectsTask/EasySwapTrade/ordermanager"
	"github.com/ProjectsTask/EasySwapTrade/registry"
	"github.com/ProjectsTask/EasySwapTrade/service/config"
	"github.com/ProjectsTask/EasySwapTrade/stores/gdb"
	"github.com/ProjectsTask/EasySwapTrade/stores/xkv"
)

// eventBuffer 事件通道缓冲大小
const eventBuffer = 256

// ServerCtx 服务上下文, 聚合全部基础设施与领域组件
type ServerCtx struct {
	C  *config.Config
	DB *gorm.DB

	Dao     *dao.Dao
	KvStore *xkv.Store

	Registry     *registry.Registry
	OrderManager *ordermanager.OrderManager
	Market       *market.Marketplace
	Chain        chainclient.ChainClient

	// EventCh 领域事件通道, 由平台侧的持久化循环消费
	EventCh chan *model.Activity
}

// NewServiceContext 初始化服务上下文
// 依次装配: 日志 -> Redis -> MySQL -> 链客户端 -> 注册表 -> nonce 账本 -> 结算引擎
func NewServiceContext(c *config.Config) (*ServerCtx, error) {
	var err error

	// 1. 日志
	if c.Log != nil {
		if _, err = xzap.SetUp(*c.Log); err != nil {
			return nil, err
		}
	}

	// 2. Redis (可选)
	var store *xkv.Store
	if c.Kv != nil && len(c.Kv.Redis) > 0 {
		var kvConf kv.KvConf
		for _, con := range c.Kv.Redis {
			kvConf = append(kvConf, cache.NodeConf{
				RedisConf: redis.RedisConf{
					Host: con.Host,
					Type: con.Type,
					Pass: con.Pass,
				},
				Weight: 1,
			})
		}
		store = xkv.NewStore(kvConf)
	}

	// 3. MySQL (可选, 缺省为纯内存模式)
	var db *gorm.DB
	var d *dao.Dao
	if c.DB != nil {
		db, err = gdb.NewDB(c.DB)
		if err != nil {
			return nil, err
		}
		if err = model.Migrate(db); err != nil {
			return nil, err
		}
		d = dao.New(context.Background(), db, store)
	}

	// 4. 链客户端
	marketAddr := common.HexToAddress(c.MarketCfg.Address)
	var chain chainclient.ChainClient
	switch c.ChainCfg.Mode {
	case "mock":
		// 本地开发/联调模式, 纯内存资产账本
		chain = chainmock.New(marketAddr)
	default:
		chain, err = chainclient.New(c.ChainCfg.ID, c.ChainCfg.RpcUrl, c.ChainCfg.OperatorKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed on create evm client")
		}
	}

	// 5. 事件通道, 满时丢弃并告警 (事件是旁路审计流, 不阻塞结算)
	eventCh := make(chan *model.Activity, eventBuffer)
	emit := func(a *model.Activity) {
		select {
		case eventCh <- a:
		default:
			xzap.WithContext(context.Background()).Warn("event channel full, drop activity",
				zap.String("event_type", a.EventType))
		}
	}

	// 6. 准入注册表与初始费率
	reg, err := registry.New(
		common.HexToAddress(c.MarketCfg.AdminAddress),
		registry.FeeConfig{Rate: c.FeeCfg.Rate, Recipient: common.HexToAddress(c.FeeCfg.Recipient)},
		c.FeeCfg.MaxRate,
		registry.WithNotify(emit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create registry")
	}

	// 7. nonce 账本, 从库恢复历史状态
	om := ordermanager.New(context.Background(), db, store, c.ChainCfg.Name, c.ProjectCfg.Name)
	if err = om.Load(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed on load order manager")
	}

	// 8. 结算引擎
	domain := order.NewDomain(c.MarketCfg.Name, c.MarketCfg.Version, c.ChainCfg.ID, marketAddr)
	mkt := market.New(domain, reg, om, chain, market.WithNotify(emit))

	return &ServerCtx{
		C:            c,
		DB:           db,
		Dao:          d,
		KvStore:      store,
		Registry:     reg,
		OrderManager: om,
		Market:       mkt,
		Chain:        chain,
		EventCh:      eventCh,
	}, nil
}
