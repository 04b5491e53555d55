package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gestao-marketplace/pkg/utils"
)

type Category string

const (
	CategoryBrinquedo    Category = "BRINQUEDO"
	CategoryMovel        Category = "MOVEL"
	CategoryPapelaria    Category = "PAPELARIA"
	CategorySaudeEBeleza Category = "SAUDE_E_BELEZA"
	CategoryUtensilio    Category = "UTENSILIO"
	CategoryVestuario    Category = "VESTUARIO"
)

var Categories = []Category{
	CategoryBrinquedo, CategoryMovel, CategoryPapelaria,
	CategorySaudeEBeleza, CategoryUtensilio, CategoryVestuario,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Status 商品状态：ANUNCIADO=在售，VENDIDO=已售，CANCELADO=已下架
type Status string

const (
	StatusListed   Status = "ANUNCIADO"
	StatusSold     Status = "VENDIDO"
	StatusCanceled Status = "CANCELADO"
)

var Statuses = []Status{StatusListed, StatusSold, StatusCanceled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       int64     `gorm:"not null" json:"price"`
	Category    Category  `gorm:"size:32;not null;index" json:"category"`
	Status      Status    `gorm:"size:16;not null;default:ANUNCIADO" json:"status"`
	ImageURL    *string   `gorm:"size:512" json:"imageUrl"`
	UserID      string    `gorm:"size:36;not null;index" json:"userId"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.Status == "" {
		p.Status = StatusListed
	}
	return nil
}

type CreateProductInput struct {
	Title       string   `json:"title"       validate:"required"`
	Price       *int64   `json:"price"       validate:"required,gte=0"`
	Description string   `json:"description" validate:"required"`
	Category    Category `json:"category"    validate:"required,oneof=BRINQUEDO MOVEL PAPELARIA SAUDE_E_BELEZA UTENSILIO VESTUARIO"`
	Status      *Status  `json:"status"      validate:"omitnil,oneof=ANUNCIADO VENDIDO CANCELADO"`
	ImageURL    *string  `json:"imageUrl"    validate:"omitnil,url"`
}

// UpdateProductInput nil 字段保持不变
type UpdateProductInput struct {
	Title       *string   `json:"title"       validate:"omitnil,min=1"`
	Price       *int64    `json:"price"       validate:"omitnil,gte=0"`
	Description *string   `json:"description" validate:"omitnil,min=1"`
	Category    *Category `json:"category"    validate:"omitnil,oneof=BRINQUEDO MOVEL PAPELARIA SAUDE_E_BELEZA UTENSILIO VESTUARIO"`
	Status      *Status   `json:"status"      validate:"omitnil,oneof=ANUNCIADO VENDIDO CANCELADO"`
	ImageURL    *string   `json:"imageUrl"    validate:"omitnil,url"`
}

// Fields 只包含出现了的列，直接交给 gorm Updates(map)
func (in UpdateProductInput) Fields() map[string]any {
	f := map[string]any{}
	if in.Title != nil {
		f["title"] = *in.Title
	}
	if in.Price != nil {
		f["price"] = *in.Price
	}
	if in.Description != nil {
		f["description"] = *in.Description
	}
	if in.Category != nil {
		f["category"] = *in.Category
	}
	if in.Status != nil {
		f["status"] = *in.Status
	}
	if in.ImageURL != nil {
		f["image_url"] = *in.ImageURL
	}
	return f
}

type UpdateStatusInput struct {
	Status Status `json:"status" validate:"required,oneof=ANUNCIADO VENDIDO CANCELADO"`
}

type ProductFilter struct {
	Category string `form:"category"`
	Title    string `form:"title"`
}

// ProductRepository 未找到时返回 (nil, nil)
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, userID string, f ProductFilter) ([]Product, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}
