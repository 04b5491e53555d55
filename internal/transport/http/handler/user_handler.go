package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
	"gestao-marketplace/internal/service"
	"gestao-marketplace/internal/transport/http/ez"
	mdw "gestao-marketplace/internal/transport/http/middleware"
)

type UserHandler struct{ svc *service.UserService }

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Priority() int { return 20 }

func (h *UserHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed.Group("/users"))

	ez.RegisterAction(e, ez.Action[domain.CreateUserInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateUserInput) (*domain.User, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	// 当前登录用户
	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.FindOne(c.Request.Context(), mdw.UserID(c))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.FindOne(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.ImageURL]{
		Method: http.MethodPost,
		Path:   "/:id/upload-avatar",
		Binder: ez.BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (*service.ImageURL, error) {
			up, done, err := formFile(c, FieldAvatar)
			if err != nil {
				return nil, err
			}
			defer done()
			return h.svc.AttachAvatar(c.Request.Context(), c.Param("id"), up)
		},
	})
}
