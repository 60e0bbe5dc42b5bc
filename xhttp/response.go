package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapTrade/errcode"
)

// Response API 统一响应结构
type Response struct {
	Code int32       `json:"code"`           // 业务码, 200 表示成功
	Msg  string      `json:"msg"`            // 描述信息
	Data interface{} `json:"data,omitempty"` // 业务数据
}

// OkJson 返回成功响应
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.CodeOK,
		Msg:  "success",
		Data: data,
	})
}

// Error 返回错误响应
// errcode.Err 按业务码返回, 其它错误统一按内部错误处理
func Error(c *gin.Context, err error) {
	e, ok := err.(*errcode.Err)
	if !ok {
		e = errcode.ErrUnexpected
	}
	// 业务错误统一使用 200 状态码, 前端根据 code 判断
	c.JSON(http.StatusOK, Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
