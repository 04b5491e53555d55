package utils

import "golang.org/x/crypto/bcrypt"

const (
	// DefaultBcryptCost 注册/登录统一使用的工作因子
	DefaultBcryptCost = 12
	// MaxPasswordBytes bcrypt 只接受 72 字节以内的输入
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{Cost: cost}
}

func (h *PasswordHasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify 比对失败（含 hash 格式错误）一律返回 false
func (h *PasswordHasher) Verify(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
