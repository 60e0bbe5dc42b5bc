package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/service/config"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
)

// Platform 应用容器, 聚合配置/路由/服务上下文
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
}

// NewPlatform 创建 Platform 实例
func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
	}, nil
}

// Start 启动平台
// 先拉起事件持久化循环, 再阻塞运行 HTTP 服务
func (p *Platform) Start(ctx context.Context) {
	threading.GoSafe(func() {
		p.persistEvents(ctx)
	})

	xzap.WithContext(ctx).Info("EasySwapTrade run", zap.String("port", p.config.Api.Port))
	if err := p.router.Run(p.config.Api.Port); err != nil {
		panic(err)
	}
}

// persistEvents 消费领域事件通道并落库
// 未启用数据库时事件仅打日志, 不中断服务
func (p *Platform) persistEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case activity := <-p.serverCtx.EventCh:
			if activity == nil {
				continue
			}
			if p.serverCtx.Dao == nil {
				xzap.WithContext(ctx).Info("activity", zap.String("event_type", activity.EventType),
					zap.String("maker", activity.Maker))
				continue
			}
			if err := p.serverCtx.Dao.AddActivity(ctx, activity); err != nil {
				xzap.WithContext(ctx).Error("failed on persist activity",
					zap.String("event_type", activity.EventType), zap.Error(err))
			}
			// 成交事件额外落一条订单终态记录
			if activity.Digest != "" {
				if err := p.serverCtx.Dao.RecordFilledOrder(ctx, activity); err != nil {
					xzap.WithContext(ctx).Error("failed on record filled order",
						zap.String("digest", activity.Digest), zap.Error(err))
				}
			}
		}
	}
}
