package models

import (
	"time"

	"github.com/google/uuid"
)

// Order представляет заказ в системе. После создания заказ неизменяем для
// всей агрегации; правки возможны только через админский CRUD.
type Order struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ProductName     string    `json:"productName" db:"product_name"`
	ProductCategory string    `json:"productCategory" db:"product_category"`
	Price           float64   `json:"price" db:"price"`
	OrderDate       time.Time `json:"orderDate" db:"order_date"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	CustomerName    string    `json:"customerName,omitempty" db:"customer_name"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// CreateOrderRequest представляет запрос на создание заказа
type CreateOrderRequest struct {
	ProductName     string  `json:"productName"`
	ProductCategory string  `json:"productCategory"`
	Price           float64 `json:"price"`
	OrderDate       string  `json:"orderDate"` // YYYY-MM-DD
}

// UpdateOrderRequest представляет запрос на изменение заказа администратором
type UpdateOrderRequest struct {
	ProductName     *string  `json:"productName,omitempty"`
	ProductCategory *string  `json:"productCategory,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	OrderDate       *string  `json:"orderDate,omitempty"` // YYYY-MM-DD
}
