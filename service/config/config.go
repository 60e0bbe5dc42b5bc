package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapTrade/logger/xzap"
	"github.com/ProjectsTask/EasySwapTrade/stores/gdb"
)

// Config 应用全局配置
type Config struct {
	Api        *ApiConf      `toml:"api" mapstructure:"api" json:"api"`                         // HTTP 服务配置
	Monitor    *Monitor      `toml:"monitor" mapstructure:"monitor" json:"monitor"`             // 监控配置
	Log        *xzap.LogConf `toml:"log" mapstructure:"log" json:"log"`                         // 日志配置
	Kv         *KvConf       `toml:"kv" mapstructure:"kv" json:"kv"`                            // KV 存储配置 (Redis), 可缺省
	DB         *gdb.Config   `toml:"db" mapstructure:"db" json:"db"`                            // 数据库配置 (MySQL), 可缺省
	ChainCfg   ChainCfg      `toml:"chain_cfg" mapstructure:"chain_cfg" json:"chain_cfg"`       // 链信息配置
	MarketCfg  MarketCfg     `toml:"market_cfg" mapstructure:"market_cfg" json:"market_cfg"`    // 市场主体配置
	FeeCfg     FeeCfg        `toml:"fee_cfg" mapstructure:"fee_cfg" json:"fee_cfg"`             // 初始费率配置
	ProjectCfg ProjectCfg    `toml:"project_cfg" mapstructure:"project_cfg" json:"project_cfg"` // 项目名称配置
}

// ApiConf HTTP 服务配置
type ApiConf struct {
	Port string `toml:"port" mapstructure:"port" json:"port"` // 监听地址, 如 :9100
}

// ChainCfg 链信息配置
type ChainCfg struct {
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`                         // 链模式: evm 或 mock (本地开发)
	Name        string `toml:"name" mapstructure:"name" json:"name"`                         // 链名称 (eth, sepolia ...)
	ID          int64  `toml:"id" mapstructure:"id" json:"id"`                               // Chain ID
	RpcUrl      string `toml:"rpc_url" mapstructure:"rpc_url" json:"rpc_url"`                // RPC 节点地址
	OperatorKey string `toml:"operator_key" mapstructure:"operator_key" json:"operator_key"` // 运营方私钥 (evm 模式)
}

// MarketCfg 市场主体配置, 同时决定 EIP-712 域参数
type MarketCfg struct {
	Name         string `toml:"name" mapstructure:"name" json:"name"`                            // EIP-712 域名称
	Version      string `toml:"version" mapstructure:"version" json:"version"`                   // EIP-712 域版本
	Address      string `toml:"address" mapstructure:"address" json:"address"`                   // 验证方/市场地址
	AdminAddress string `toml:"admin_address" mapstructure:"admin_address" json:"admin_address"` // 管理员地址
}

// FeeCfg 初始费率配置
type FeeCfg struct {
	Rate      uint64 `toml:"rate" mapstructure:"rate" json:"rate"`                // 费率分子 (万分比)
	MaxRate   uint64 `toml:"max_rate" mapstructure:"max_rate" json:"max_rate"`    // 费率上限
	Recipient string `toml:"recipient" mapstructure:"recipient" json:"recipient"` // 平台费收款地址
}

// Monitor 监控配置
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"` // 是否开启 Pprof
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`       // Pprof 监听端口
}

// ProjectCfg 项目配置
type ProjectCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name"` // 项目名称, 参与缓存键前缀
}

// KvConf Key-Value 存储配置
type KvConf struct {
	Redis []*Redis `toml:"redis" json:"redis"` // Redis 节点列表
}

// Redis Redis 连接配置
type Redis struct {
	Host string `toml:"host" json:"host"` // 主机地址
	Type string `toml:"type" json:"type"` // 类型 (node, cluster)
	Pass string `toml:"pass" json:"pass"` // 密码
}

// UnmarshalConfig 加载并解析指定路径的配置文件
func UnmarshalConfig(configFilePath string) (*Config, error) {
	viper.SetConfigFile(configFilePath)
	viper.SetConfigType("toml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ESWAP") // 环境变量覆盖, 如 ESWAP_DB_HOST
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// UnmarshalCmdConfig 解析已由命令行注册过路径的配置文件
func UnmarshalCmdConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
