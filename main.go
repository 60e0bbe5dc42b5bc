package main

import (
	"github.com/ProjectsTask/EasySwapTrade/cmd"
)

// main 程序入口
// 执行 go run main.go daemon 启动结算服务
func main() {
	cmd.Execute()
}
