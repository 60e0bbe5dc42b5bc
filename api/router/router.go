package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/api/middleware"
	v1 "github.com/ProjectsTask/EasySwapTrade/api/v1"
	"github.com/ProjectsTask/EasySwapTrade/service/svc"
)

// NewRouter 构建 Gin 路由
func NewRouter(svcCtx *svc.ServerCtx) *gin.Engine {
	// 强制控制台颜色输出, 便于阅读
	gin.ForceConsoleColor()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RecoverMiddleware()) // panic 恢复
	r.Use(middleware.RLog())              // 请求日志

	r.Use(cors.New(cors.Config{ // 跨域策略
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "X-CSRF-Token", "Authorization", "AccessToken", "Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           1 * time.Hour,
	}))
	loadV1(r, svcCtx)

	return r
}

// loadV1 注册 v1 版本路由
func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	api := r.Group("/api/v1")

	// 结算与取消入口
	orders := api.Group("/orders")
	orders.POST("/listing/execute", v1.ExecuteListingHandler(svcCtx)) // 执行挂单
	orders.POST("/offer/accept", v1.AcceptOfferHandler(svcCtx))       // 接受出价
	orders.POST("/cancel", v1.CancelOrdersHandler(svcCtx))            // 批量取消 nonce
	orders.POST("/cancel-all", v1.CancelAllOrdersHandler(svcCtx))     // 水位线取消
	orders.GET("/nonce-status", v1.NonceStatusHandler(svcCtx))        // nonce 状态查询
	orders.GET("/status", v1.OrderStatusHandler(svcCtx))              // 订单摘要状态查询

	// 活动事件 (链下索引器拉取)
	api.GET("/activities", v1.ActivitiesHandler(svcCtx))

	// 管理接口 (管理员地址门禁在领域层)
	admin := api.Group("/admin")
	admin.GET("/fee", v1.GetFeeHandler(svcCtx))
	admin.POST("/fee", v1.SetFeeHandler(svcCtx))
	admin.GET("/currencies", v1.ListCurrenciesHandler(svcCtx))
	admin.POST("/currencies/add", v1.AddCurrencyHandler(svcCtx))
	admin.POST("/currencies/remove", v1.RemoveCurrencyHandler(svcCtx))
	admin.GET("/collections", v1.ListCollectionsHandler(svcCtx))
	admin.POST("/collections/add", v1.AddCollectionHandler(svcCtx))
	admin.POST("/collections/remove", v1.RemoveCollectionHandler(svcCtx))
}
