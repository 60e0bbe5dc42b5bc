package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // pprof 性能分析
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapTrade/api/router"
	"github.com/ProjectsTask/EasySwapTrade/app"
	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/service/config"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
)

// DaemonCmd 定义 "daemon" 子命令, 启动结算服务
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "run settlement service.",
	Long:  "run wallet nft settlement service.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		ctx, cancel := context.WithCancel(context.Background())

		// 服务启动/运行错误通知
		onExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. 读取解析配置
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to unmarshal config", zap.Error(err))
				onExit <- err
				return
			}

			// 2. 初始化日志
			if cfg.Log != nil {
				if _, err = xzap.SetUp(*cfg.Log); err != nil {
					xzap.WithContext(ctx).Error("Failed to set up logger", zap.Error(err))
					onExit <- err
					return
				}
			}

			xzap.WithContext(ctx).Info("settlement server start", zap.Any("config", cfg))

			// 3. 装配服务上下文 (db/redis/链客户端/结算引擎)
			svcCtx, err := svc.NewServiceContext(cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create service context", zap.Error(err))
				onExit <- err
				return
			}

			// 4. 构建路由与应用容器
			r := router.NewRouter(svcCtx)
			platform, err := app.NewPlatform(cfg, r, svcCtx)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create platform", zap.Error(err))
				onExit <- err
				return
			}

			// 5. 按需启动 pprof
			if cfg.Monitor != nil && cfg.Monitor.PprofEnable {
				threading.GoSafe(func() {
					_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil)
				})
			}

			// 6. 启动平台 (阻塞)
			platform.Start(ctx)
		}()

		// 监听系统信号, 优雅退出
		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			cancel()
			xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
			os.Exit(0)
		case err := <-onExit:
			cancel()
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
			wg.Wait()
		}
	},
}

func init() {
	rootCmd.AddCommand(DaemonCmd)
}
