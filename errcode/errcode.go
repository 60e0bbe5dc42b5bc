package errcode

import (
	"fmt"
)

// Err 带业务码的错误类型, API 层统一返回该结构
type Err struct {
	Code int32  `json:"code"` // 业务错误码
	Msg  string `json:"msg"`  // 错误描述
}

// Error 实现 error 接口
func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewErr 创建一个带业务码的错误
func NewErr(code int32, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

// NewCustomErr 创建一个自定义错误, 使用通用自定义错误码
func NewCustomErr(msg string) *Err {
	return NewErr(CodeCustom, msg)
}

// 通用错误码定义
const (
	CodeOK            = 200   // 成功
	CodeCustom        = 10000 // 自定义错误
	CodeInvalidParams = 10001 // 参数错误
	CodeUnauthorized  = 10002 // 未授权
	CodeInternal      = 10500 // 内部错误
)

// 通用错误实例
var (
	ErrInvalidParams = NewErr(CodeInvalidParams, "invalid params")
	ErrUnauthorized  = NewErr(CodeUnauthorized, "unauthorized")
	ErrUnexpected    = NewErr(CodeInternal, "internal server error")
)
