package xzap

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConf 日志配置
type LogConf struct {
	ServiceName string `toml:"service_name" mapstructure:"service_name" json:"service_name"` // 服务名称, 会附加到每条日志
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`                         // 输出模式: console 或 file
	Path        string `toml:"path" mapstructure:"path" json:"path"`                         // 文件模式下的日志路径
	Level       string `toml:"level" mapstructure:"level" json:"level"`                      // 日志级别: debug/info/warn/error
	Compress    bool   `toml:"compress" mapstructure:"compress" json:"compress"`             // 是否压缩历史日志
	KeepDays    int    `toml:"keep_days" mapstructure:"keep_days" json:"keep_days"`          // 日志保留天数
	MaxSize     int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`             // 单个日志文件最大体积 (MB)
	MaxBackups  int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`    // 历史日志文件最大数量
}

// Logger 对 zap.Logger 的轻量封装, 支持从 Context 派生
type Logger struct {
	l *zap.Logger
}

var (
	mu     sync.RWMutex
	global = zap.NewNop() // 未初始化时使用空实现, 避免空指针
)

// SetUp 根据配置初始化全局日志实例
// 文件模式下使用 lumberjack 做日志切割与归档
func SetUp(c LogConf) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Level != "" {
		if err := level.Set(c.Level); err != nil {
			return nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	var ws zapcore.WriteSyncer
	switch c.Mode {
	case "file":
		// 文件输出: 交给 lumberjack 处理切割/保留/压缩
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.KeepDays,
			Compress:   c.Compress,
		})
	default:
		// 默认输出到标准输出
		ws = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level)
	logger := zap.New(core, zap.AddCaller())
	if c.ServiceName != "" {
		logger = logger.With(zap.String("service", c.ServiceName))
	}

	mu.Lock()
	global = logger
	mu.Unlock()

	return logger, nil
}

// WithContext 从 Context 派生日志实例
// 预留接口: 后续可以从 ctx 中提取 trace id 等字段附加到日志
func WithContext(ctx context.Context) *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()

	if ctx != nil {
		if traceID, ok := ctx.Value(CtxTraceID).(string); ok && traceID != "" {
			l = l.With(zap.String("trace_id", traceID))
		}
	}
	return &Logger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

// ctxKey Context 键类型, 避免与其它包的键冲突
type ctxKey string

// CtxTraceID 请求级 trace id 在 Context 中的键
const CtxTraceID ctxKey = "trace_id"

// Info 打印 info 级别日志
func (x *Logger) Info(msg string, fields ...zap.Field) {
	x.l.Info(msg, fields...)
}

// Warn 打印 warn 级别日志
func (x *Logger) Warn(msg string, fields ...zap.Field) {
	x.l.Warn(msg, fields...)
}

// Error 打印 error 级别日志
func (x *Logger) Error(msg string, fields ...zap.Field) {
	x.l.Error(msg, fields...)
}

// Debug 打印 debug 级别日志
func (x *Logger) Debug(msg string, fields ...zap.Field) {
	x.l.Debug(msg, fields...)
}
