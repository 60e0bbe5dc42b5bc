package gdb

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 数据库配置 (MySQL)
type Config struct {
	User         string `toml:"user" mapstructure:"user" json:"user"`                               // 用户名
	Password     string `toml:"password" mapstructure:"password" json:"password"`                   // 密码
	Host         string `toml:"host" mapstructure:"host" json:"host"`                               // 主机地址
	Port         int    `toml:"port" mapstructure:"port" json:"port"`                               // 端口
	Database     string `toml:"database" mapstructure:"database" json:"database"`                   // 库名
	MaxIdleConns int    `toml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"` // 最大打开连接数
	MaxLifeTime  int    `toml:"max_life_time" mapstructure:"max_life_time" json:"max_life_time"`    // 连接最大存活时间 (秒)
	LogLevel     string `toml:"log_level" mapstructure:"log_level" json:"log_level"`                // gorm 日志级别
}

// NewDB 根据配置创建 gorm 数据库连接
func NewDB(c *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)

	level := logger.Warn
	switch c.LogLevel {
	case "silent":
		level = logger.Silent
	case "info":
		level = logger.Info
	case "error":
		level = logger.Error
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on open mysql connection")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed on get sql db")
	}
	// 连接池参数
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxLifeTime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.MaxLifeTime) * time.Second)
	}

	return db, nil
}
