package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
	"gestao-marketplace/internal/service"
	"gestao-marketplace/internal/transport/http/ez"
)

type AuthHandler struct{ svc *service.AuthService }

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := ez.New(public.Group("/auth"))
	priv := ez.New(authed.Group("/auth"))

	ez.RegisterAction(pub, ez.Action[service.SignInInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/sign-in",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.SignInInput) (*service.AuthResult, error) {
			return h.svc.SignIn(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(pub, ez.Action[domain.CreateUserInput, *service.AuthResult]{
		Method: http.MethodPost,
		Path:   "/sign-up",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateUserInput) (*service.AuthResult, error) {
			return h.svc.SignUp(c.Request.Context(), *in)
		},
	})

	// 走到这里说明中间件已经验过 token
	ez.RegisterAction(priv, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/verify-token",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"valid": true}, nil
		},
	})
}
