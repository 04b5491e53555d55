package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gestao-marketplace/pkg/utils"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Phone        string    `gorm:"uniqueIndex;size:32;not null" json:"phone"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	AvatarURL    *string   `gorm:"size:512" json:"avatarUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	return nil
}

// Public 登录/注册响应里只暴露 id + email
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser { return PublicUser{ID: u.ID, Email: u.Email} }

type CreateUserInput struct {
	Name     string `json:"name"     validate:"required"`
	Phone    string `json:"phone"    validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72,password"`
}

// UserRepository 未找到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*User, error)
	UpdateAvatar(ctx context.Context, id, url string) error
}
