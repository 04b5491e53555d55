package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"gestao-marketplace/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

var _ domain.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List 只查 owner 的商品；category/title 为不区分大小写的子串匹配，最新的在前
func (r *ProductRepo) List(ctx context.Context, userID string, f domain.ProductFilter) ([]domain.Product, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Product{}).Where("user_id = ?", userID)
	if v := strings.TrimSpace(f.Category); v != "" {
		tx = tx.Where("LOWER(category) LIKE ? ESCAPE '!'", likePattern(v))
	}
	if v := strings.TrimSpace(f.Title); v != "" {
		tx = tx.Where("LOWER(title) LIKE ? ESCAPE '!'", likePattern(v))
	}
	products := make([]domain.Product, 0)
	if err := tx.Order("created_at desc").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update 只改 fields 里出现的列；记录不存在返回 NotFound
func (r *ProductRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	var affected int64
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
	}
	if affected > 0 {
		return nil
	}
	// mysql 值未变化时 RowsAffected 也是 0，再确认一次是否存在
	ok, err := exists(ctx, r.db, &domain.Product{}, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(domain.MsgProductNotFound)
	}
	return nil
}

func exists(ctx context.Context, db *gorm.DB, model any, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// likePattern 以 ! 为转义符，三种方言通用
func likePattern(v string) string {
	v = strings.ToLower(v)
	v = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(v)
	return "%" + v + "%"
}
