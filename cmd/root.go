package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "easyswaptrade",
	Short: "wallet nft marketplace settlement service",
	Long:  "wallet nft marketplace settlement service.",
}

// Execute 解析命令行并执行子命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	// 全局配置文件参数
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config/config.toml)")
}

// initConfig 定位并读取配置文件
// 优先级: --config 参数 > 当前目录 config/ > 用户主目录
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath("./config")
		viper.AddConfigPath(filepath.Join(home, ".easyswaptrade"))
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.AutomaticEnv()
}
