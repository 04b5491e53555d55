package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gestao-marketplace/internal/core/auth"
	"gestao-marketplace/internal/domain"
	"gestao-marketplace/pkg/utils"
)

type SignInInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	AccessToken string            `json:"accessToken"`
	User        domain.PublicUser `json:"user"`
}

type AuthService struct {
	users  *UserService
	hasher *utils.PasswordHasher
	jwt    *auth.JWTer
	log    *zap.Logger
}

func NewAuthService(users *UserService, hasher *utils.PasswordHasher, jwt *auth.JWTer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, jwt: jwt, log: log}
}

// SignIn 邮箱不存在和密码错误返回同一个错误
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !s.hasher.Verify(in.Password, u.PasswordHash) {
		s.log.Info("sign-in rejected")
		return nil, domain.Unauthorized(domain.MsgInvalidCredentials)
	}
	return s.issue(u)
}

// SignUp 重复注册的错误原样返回，不签发 token
func (s *AuthService) SignUp(ctx context.Context, in domain.CreateUserInput) (*AuthResult, error) {
	u, err := s.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Verify 校验 token，返回 subject（用户 id）
func (s *AuthService) Verify(token string) (string, error) {
	sub, err := s.jwt.Verify(token)
	if err != nil {
		return "", &domain.Error{Kind: domain.KindUnauthorized, Msg: "invalid token", Err: err}
	}
	return sub, nil
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{AccessToken: tok, User: u.Public()}, nil
}
