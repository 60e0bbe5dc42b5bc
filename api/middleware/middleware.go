package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/xhttp"
)

// RecoverMiddleware 捕获 handler 中的 panic, 记录后返回统一错误
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				xzap.WithContext(c.Request.Context()).Error("panic recovered",
					zap.Any("panic", r), zap.String("path", c.Request.URL.Path))
				xhttp.Error(c, errcode.ErrUnexpected)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RLog 请求日志中间件
// 为每个请求生成 trace id 注入 Context, 结束时输出访问日志
func RLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := uuid.NewString()
		ctx := context.WithValue(c.Request.Context(), xzap.CtxTraceID, traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-Id", traceID)

		c.Next()

		xzap.WithContext(ctx).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
