package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gestao-marketplace/internal/core/cache"
	"gestao-marketplace/internal/core/storage"
	"gestao-marketplace/internal/domain"
)

type ProductService struct {
	products domain.ProductRepository
	users    *UserService
	store    storage.Gateway
	opt      Options
}

func NewProductService(products domain.ProductRepository, users *UserService, store storage.Gateway, opt Options) *ProductService {
	return &ProductService{products: products, users: users, store: store, opt: opt.withDefaults()}
}

// Create owner 不存在时什么都不写
func (s *ProductService) Create(ctx context.Context, userID string, in domain.CreateProductInput) (*domain.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	owner, err := s.users.FindOne(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
		Status:      domain.StatusListed,
		ImageURL:    in.ImageURL,
		UserID:      owner.ID,
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.opt.Log.Info("product created", zap.String("productId", p.ID), zap.String("userId", owner.ID))
	return p, nil
}

func (s *ProductService) FindAll(ctx context.Context, userID string, f domain.ProductFilter) ([]domain.Product, error) {
	ps, err := s.products.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

func (s *ProductService) FindOne(ctx context.Context, id string) (*domain.Product, error) {
	return cache.GetOrLoadJSON(s.opt.Cache, ctx, productKey(id), s.opt.CacheTTL, func(ctx context.Context) (*domain.Product, error) {
		return s.load(ctx, id)
	})
}

// Update 只改传了的字段
func (s *ProductService) Update(ctx context.Context, id string, in domain.UpdateProductInput) (*domain.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, in.Fields())
}

// UpdateStatus 任意状态之间都可以直接切换，没有状态机约束
func (s *ProductService) UpdateStatus(ctx context.Context, id string, in domain.UpdateStatusInput) (*domain.Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, map[string]any{"status": in.Status})
}

func (s *ProductService) AttachImage(ctx context.Context, id string, f *Upload) (*ImageURL, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.opt.checkUpload(f); err != nil {
		return nil, err
	}

	url, err := s.opt.upload(ctx, s.store, storage.FolderProductImages, p.ID, f)
	if err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p.ID, map[string]any{"image_url": url}); err != nil {
		return nil, err
	}
	s.opt.invalidate(ctx, productKey(p.ID))
	return &ImageURL{ImageURL: url}, nil
}

func (s *ProductService) apply(ctx context.Context, id string, fields map[string]any) (*domain.Product, error) {
	if err := s.products.Update(ctx, id, fields); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.opt.invalidate(ctx, productKey(id))
	return s.load(ctx, id)
}

func (s *ProductService) load(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	if p == nil {
		return nil, domain.NotFound(domain.MsgProductNotFound)
	}
	return p, nil
}
