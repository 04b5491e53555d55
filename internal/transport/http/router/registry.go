package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 一个业务模块；public 不鉴权，authed 已挂 JWT 中间件
type APIModule interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），不实现则默认 100
type prioritizer interface{ Priority() int }

// MountAll 按优先级挂载所有模块
func MountAll(public, authed *gin.RouterGroup, mods ...APIModule) {
	mods = append([]APIModule(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(public, authed)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
