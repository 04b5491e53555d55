// Package ez 一行注册一个接口：绑定入参、调用业务、统一映射错误
package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
	resp "gestao-marketplace/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // GET | POST | PATCH | PUT | DELETE
	Path    string // 例："/auth/sign-in"、"/products/:id/status"
	Binder  Binder
	Auth    bool // 要求鉴权中间件已写入 userId
	Status  int  // 成功时的状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	okStatus := a.Status
	if okStatus == 0 {
		okStatus = http.StatusOK
	}

	h := func(c *gin.Context) {
		// 1) 鉴权
		if a.Auth && c.GetString("userId") == "" {
			resp.Abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		// 2) 绑定入参（字段校验在 service 层做）
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			resp.Fail(c, &domain.Error{Kind: domain.KindValidation, Msg: "invalid request body", Err: bindErr})
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		c.JSON(okStatus, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
