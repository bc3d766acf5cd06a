package handlers

import (
	"context"
	"time"

	"order-dashboard/internal/auth"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
)

// ----- Orders -----

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrdersInRange(ctx context.Context, rng models.DateRange) ([]*models.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderRequest) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}

// ----- Users -----

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error)
}

type TokenManager interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// ----- Analytics -----

type StatsProvider interface {
	Snapshot(ctx context.Context, rng models.DateRange) (*models.StatsSnapshot, error)
}

type ChartProvider interface {
	RevenueSeries(ctx context.Context, rng models.DateRange) ([]models.RevenuePoint, error)
	CategoryDistribution(ctx context.Context, rng models.DateRange) ([]models.CategorySlice, error)
}

type DashboardProvider interface {
	Load(ctx context.Context, filter models.TimeFilter) (*models.DashboardData, error)
}

// ----- Events -----

type EventProducer interface {
	PublishOrderCreated(order *models.Order) error
	PublishOrderUpdated(order *models.Order) error
	PublishOrderDeleted(orderID uuid.UUID) error
	PublishUserRegistered(user *models.User) error
}

// ----- Cache -----

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
