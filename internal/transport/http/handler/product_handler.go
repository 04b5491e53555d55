package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestao-marketplace/internal/domain"
	"gestao-marketplace/internal/service"
	"gestao-marketplace/internal/transport/http/ez"
)

type ProductHandler struct{ svc *service.ProductService }

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Priority() int { return 30 }

// MountAPI gin 要求同一位置的参数同名，所以创建接口里的 :id 是 owner 的用户 ID
func (h *ProductHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := ez.New(authed.Group("/products"))

	ez.RegisterAction(e, ez.Action[domain.CreateProductInput, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateProductInput) (*domain.Product, error) {
			return h.svc.Create(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ProductFilter, []domain.Product]{
		Method: http.MethodGet,
		Path:   "/all/:id",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ProductFilter) ([]domain.Product, error) {
			return h.svc.FindAll(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			return h.svc.FindOne(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(e, ez.Action[domain.UpdateProductInput, *domain.Product]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.UpdateProductInput) (*domain.Product, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[domain.UpdateStatusInput, *domain.Product]{
		Method: http.MethodPatch,
		Path:   "/:id/status",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.UpdateStatusInput) (*domain.Product, error) {
			return h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *service.ImageURL]{
		Method: http.MethodPost,
		Path:   "/:id/upload-image",
		Binder: ez.BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (*service.ImageURL, error) {
			up, done, err := formFile(c, FieldProductImage)
			if err != nil {
				return nil, err
			}
			defer done()
			return h.svc.AttachImage(c.Request.Context(), c.Param("id"), up)
		},
	})
}
