package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role представляет роль пользователя в системе
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// NormalizeRole приводит роль к каноническому нижнему регистру.
// Исторически в данных встречались варианты "ADMIN"/"CUSTOMER", поэтому
// нормализация выполняется на границе, а не при каждом сравнении.
func NormalizeRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCustomer:
		return RoleCustomer, true
	default:
		return "", false
	}
}

// User представляет пользователя системы
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest представляет запрос на регистрацию пользователя
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse представляет ответ на регистрацию или вход
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
