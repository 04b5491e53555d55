package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gestao-marketplace/internal/core/cache"
	"gestao-marketplace/internal/core/storage"
	"gestao-marketplace/internal/domain"
	"gestao-marketplace/pkg/utils"
)

type UserService struct {
	users  domain.UserRepository
	hasher *utils.PasswordHasher
	store  storage.Gateway
	opt    Options
}

func NewUserService(users domain.UserRepository, hasher *utils.PasswordHasher, store storage.Gateway, opt Options) *UserService {
	return &UserService{users: users, hasher: hasher, store: store, opt: opt.withDefaults()}
}

// Create email 或 phone 任一已存在即拒绝
func (s *UserService) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, domain.Duplicate(domain.MsgUserExists)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, domain.Validation(fmt.Sprintf("password must have at most %d bytes", utils.MaxPasswordBytes))
	}
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: in.Name, Phone: in.Phone, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if domain.KindOf(err) == domain.KindDuplicate {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.opt.Log.Info("user created", zap.String("userId", u.ID))
	return u, nil
}

func (s *UserService) FindOne(ctx context.Context, id string) (*domain.User, error) {
	return cache.GetOrLoadJSON(s.opt.Cache, ctx, userKey(id), s.opt.CacheTTL, func(ctx context.Context) (*domain.User, error) {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		if u == nil {
			return nil, domain.NotFound(domain.MsgUserNotFound)
		}
		return u, nil
	})
}

// FindByEmail 登录用，不走缓存（缓存里没有密码哈希）
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *UserService) AttachAvatar(ctx context.Context, id string, f *Upload) (*ImageURL, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, domain.NotFound(domain.MsgUserNotFound)
	}
	if err := s.opt.checkUpload(f); err != nil {
		return nil, err
	}

	url, err := s.opt.upload(ctx, s.store, storage.FolderUserAvatars, u.ID, f)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, u.ID, url); err != nil {
		return nil, err
	}
	s.opt.invalidate(ctx, userKey(u.ID))
	return &ImageURL{ImageURL: url}, nil
}
