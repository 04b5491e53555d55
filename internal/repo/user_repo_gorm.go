package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gestao-marketplace/internal/core/database"
	"gestao-marketplace/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Create 唯一索引冲突转成 Duplicate，先查后插的竞态由索引兜底
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicateKey(err) {
		return &domain.Error{Kind: domain.KindDuplicate, Msg: domain.MsgUserExists, Err: err}
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	return r.first(ctx, "email = ? OR phone = ?", email, phone)
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, id, url string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := exists(ctx, r.db, &domain.User{}, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(domain.MsgUserNotFound)
	}
	return nil
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
