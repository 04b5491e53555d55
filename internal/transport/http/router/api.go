package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gestao-marketplace/internal/core/server"
	"gestao-marketplace/internal/service"
	"gestao-marketplace/internal/transport/http/handler"
	mdw "gestao-marketplace/internal/transport/http/middleware"
)

// Pinger 健康检查探测的下游（DB、redis）
type Pinger func(ctx context.Context) error

type Deps struct {
	Log      *zap.Logger
	Auth     *service.AuthService
	Users    *service.UserService
	Products *service.ProductService

	CORSOrigins    []string
	MaxInFlight    int64
	MaxBodyBytes   int64
	HandlerTimeout time.Duration
	Checks         map[string]Pinger
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 16 << 20
	}
	r := server.NewRouter(d.Log, d.CORSOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(d.MaxInFlight),
		mdw.Timeout(d.HandlerTimeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log, "/health", "/metrics"),
	)

	r.GET("/health", health(d.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 先鉴权再限制 body，未登录的大请求拿到的是 401
	public := r.Group("")
	public.Use(mdw.MaxBodyBytes(d.MaxBodyBytes))
	authed := r.Group("")
	authed.Use(mdw.AuthJWT(d.Auth), mdw.MaxBodyBytes(d.MaxBodyBytes))

	MountAll(public, authed,
		handler.NewProductHandler(d.Products),
		handler.NewUserHandler(d.Users),
		handler.NewAuthHandler(d.Auth),
	)
	return r
}

func health(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		out := gin.H{}
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				out[name] = "down"
				continue
			}
			out[name] = "up"
		}
		out["ok"] = status == http.StatusOK
		c.JSON(status, out)
	}
}
