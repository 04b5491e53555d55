package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
)

// Resp 所有失败响应的统一结构
type Resp struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// Error 构造失败响应，msg 为空时用状态码的标准文本
func Error(status int, msg string) Resp {
	text := http.StatusText(status)
	if msg == "" {
		msg = text
	}
	return Resp{Message: msg, Error: text, StatusCode: status}
}

// FromError 业务错误原样透出 Msg；其余一律 500 且不暴露原因
func FromError(err error) (int, Resp) {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		status := StatusOf(de.Kind)
		return status, Error(status, de.Error())
	}
	return http.StatusInternalServerError, Error(http.StatusInternalServerError, "")
}

// Fail 写错误响应；原始错误挂到 c.Errors 给访问日志
func Fail(c *gin.Context, err error) {
	status, body := FromError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}
