package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"order-dashboard/internal/apperror"
	"order-dashboard/internal/database"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
)

const orderDateLayout = "2006-01-02"

// OrderService представляет сервис для работы с заказами
type OrderService struct {
	db  *database.DB
	log *logger.Logger
}

// NewOrderService создает новый экземпляр сервиса заказов
func NewOrderService(db *database.DB, log *logger.Logger) *OrderService {
	return &OrderService{
		db:  db,
		log: log,
	}
}

// CreateOrder создает новый заказ от имени покупателя
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	orderDate, err := time.Parse(orderDateLayout, req.OrderDate)
	if err != nil {
		return nil, apperror.Validation("orderDate must be in YYYY-MM-DD format", err)
	}

	order := &models.Order{
		ID:              uuid.New(),
		ProductName:     strings.TrimSpace(req.ProductName),
		ProductCategory: strings.TrimSpace(req.ProductCategory),
		Price:           req.Price,
		OrderDate:       orderDate,
		UserID:          userID,
		CreatedAt:       time.Now(),
	}

	query := `
		INSERT INTO orders (id, product_name, product_category, price, order_date, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query, order.ID, order.ProductName, order.ProductCategory,
		order.Price, order.OrderDate, order.UserID, order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"price":    order.Price,
	}).Info("Order created successfully")

	return order, nil
}

// GetOrder получает заказ по ID
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}

	query := `
		SELECT o.id, o.product_name, o.product_category, o.price, o.order_date, o.user_id, u.name, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID, &order.ProductName, &order.ProductCategory, &order.Price,
		&order.OrderDate, &order.UserID, &order.CustomerName, &order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order not found", err)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetOrdersInRange возвращает все заказы периода вместе с именем покупателя,
// новые первыми.
func (s *OrderService) GetOrdersInRange(ctx context.Context, rng models.DateRange) ([]*models.Order, error) {
	cond, args := rangeCondition(rng)

	query := fmt.Sprintf(`
		SELECT o.id, o.product_name, o.product_category, o.price, o.order_date, o.user_id, u.name, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.%s
		ORDER BY o.order_date DESC
	`, cond)

	return s.queryOrders(ctx, query, args...)
}

// GetUserOrders возвращает заказы одного покупателя, новые первыми.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.product_name, o.product_category, o.price, o.order_date, o.user_id, u.name, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.order_date DESC
	`

	return s.queryOrders(ctx, query, userID)
}

// CountOrders возвращает количество заказов периода.
func (s *OrderService) CountOrders(ctx context.Context, rng models.DateRange) (int, error) {
	cond, args := rangeCondition(rng)

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM orders WHERE %s", cond)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// UpdateOrder изменяет поля заказа (админская операция)
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderRequest) error {
	setClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if req.ProductName != nil {
		if strings.TrimSpace(*req.ProductName) == "" {
			return apperror.Validation("productName must not be empty", nil)
		}
		setClauses = append(setClauses, fmt.Sprintf("product_name = $%d", argIndex))
		args = append(args, strings.TrimSpace(*req.ProductName))
		argIndex++
	}

	if req.ProductCategory != nil {
		if strings.TrimSpace(*req.ProductCategory) == "" {
			return apperror.Validation("productCategory must not be empty", nil)
		}
		setClauses = append(setClauses, fmt.Sprintf("product_category = $%d", argIndex))
		args = append(args, strings.TrimSpace(*req.ProductCategory))
		argIndex++
	}

	if req.Price != nil {
		if *req.Price <= 0 {
			return apperror.Validation("price must be positive", nil)
		}
		setClauses = append(setClauses, fmt.Sprintf("price = $%d", argIndex))
		args = append(args, *req.Price)
		argIndex++
	}

	if req.OrderDate != nil {
		orderDate, err := time.Parse(orderDateLayout, *req.OrderDate)
		if err != nil {
			return apperror.Validation("orderDate must be in YYYY-MM-DD format", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("order_date = $%d", argIndex))
		args = append(args, orderDate)
		argIndex++
	}

	if len(setClauses) == 0 {
		return apperror.Validation("no fields to update", nil)
	}

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argIndex)
	args = append(args, orderID)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("order not found", nil)
	}

	s.log.WithField("order_id", orderID).Info("Order updated")

	return nil
}

// DeleteOrder удаляет заказ (админская операция)
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("order not found", nil)
	}

	s.log.WithField("order_id", orderID).Info("Order deleted")

	return nil
}

func (s *OrderService) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.ProductName, &order.ProductCategory, &order.Price,
			&order.OrderDate, &order.UserID, &order.CustomerName, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

func validateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req == nil {
		return apperror.Validation("request body is required", nil)
	}
	if strings.TrimSpace(req.ProductName) == "" {
		return apperror.Validation("productName is required", nil)
	}
	if strings.TrimSpace(req.ProductCategory) == "" {
		return apperror.Validation("productCategory is required", nil)
	}
	if req.Price <= 0 {
		return apperror.Validation("price must be positive", nil)
	}
	if req.OrderDate == "" {
		return apperror.Validation("orderDate is required", nil)
	}
	return nil
}
