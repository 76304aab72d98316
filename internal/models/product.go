package models

import (
	"strings"
	"time"
)

const (
	ProductStatusActive       = "active"
	ProductStatusInactive     = "inactive"
	ProductStatusDiscontinued = "discontinued"
)

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Category      string   `json:"category" validate:"required,max=100"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	StockQuantity *int     `json:"stock_quantity" validate:"required,gte=0"`
	Description   string   `json:"description" validate:"max=1000"`
	Status        string   `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *CreateProductRequest) Fields() map[string]any {
	status := r.Status
	if status == "" {
		status = ProductStatusActive
	}
	return map[string]any{
		"name":           r.Name,
		"category":       r.Category,
		"price":          valueOr(r.Price, 0),
		"stock_quantity": valueOr(r.StockQuantity, 0),
		"description":    r.Description,
		"status":         status,
	}
}

// UpdateProductRequest is the partial form: absent fields stay untouched.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Category      *string  `json:"category" validate:"omitempty,min=1,max=100"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	StockQuantity *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	Status        *string  `json:"status" validate:"omitempty,oneof=active inactive discontinued"`
}

func (r *UpdateProductRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Category)
	trimPtr(r.Description)
	if r.Status != nil {
		*r.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
}

func (r *UpdateProductRequest) Fields() map[string]any {
	f := make(map[string]any)
	setIf(f, "name", r.Name)
	setIf(f, "category", r.Category)
	setIf(f, "price", r.Price)
	setIf(f, "stock_quantity", r.StockQuantity)
	setIf(f, "description", r.Description)
	setIf(f, "status", r.Status)
	return f
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func setIf[T any](f map[string]any, key string, p *T) {
	if p != nil {
		f[key] = *p
	}
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}
