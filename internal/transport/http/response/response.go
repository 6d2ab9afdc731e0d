package response

import (
	"github.com/gin-gonic/gin"

	"staffhub/internal/service"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError 服务层错误到 HTTP 的唯一出口；
// 未分类错误一律 500 + 笼统文案，细节只进日志
func FromError(c *gin.Context, err error) {
	status := service.HTTPStatus(err)
	msg := err.Error()
	if service.KindOf(err) == service.KindInternal {
		msg = "server error"
	}
	_ = c.Error(err) // 交给 access log
	c.JSON(status, Error(status, msg))
}

// Abort FromError 的中间件版本
func Abort(c *gin.Context, err error) {
	status := service.HTTPStatus(err)
	c.AbortWithStatusJSON(status, Error(status, err.Error()))
}
