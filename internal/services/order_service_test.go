package services

import (
	"context"
	"testing"
	"time"

	"order-dashboard/internal/apperror"
	"order-dashboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestOrderService_CreateOrder_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	userID := uuid.New()

	req := &models.CreateOrderRequest{
		ProductName:     "Ноутбук",
		ProductCategory: "Electronics",
		Price:           1499.99,
		OrderDate:       "2024-03-10",
	}

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), "Ноутбук", "Electronics", 1499.99,
			time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), userID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	order, err := service.CreateOrder(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if order.ID == uuid.Nil {
		t.Fatal("expected generated order ID")
	}
	if order.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, order.UserID)
	}
	if !order.OrderDate.Equal(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected order date: %v", order.OrderDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	userID := uuid.New()

	cases := []struct {
		name string
		req  *models.CreateOrderRequest
	}{
		{"nil request", nil},
		{"empty product name", &models.CreateOrderRequest{ProductCategory: "Books", Price: 10, OrderDate: "2024-01-01"}},
		{"empty category", &models.CreateOrderRequest{ProductName: "Книга", Price: 10, OrderDate: "2024-01-01"}},
		{"zero price", &models.CreateOrderRequest{ProductName: "Книга", ProductCategory: "Books", OrderDate: "2024-01-01"}},
		{"negative price", &models.CreateOrderRequest{ProductName: "Книга", ProductCategory: "Books", Price: -5, OrderDate: "2024-01-01"}},
		{"missing date", &models.CreateOrderRequest{ProductName: "Книга", ProductCategory: "Books", Price: 10}},
		{"bad date format", &models.CreateOrderRequest{ProductName: "Книга", ProductCategory: "Books", Price: 10, OrderDate: "10.03.2024"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateOrder(context.Background(), userID, tc.req)
			if !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	orderID := uuid.New()

	mock.ExpectQuery("SELECT o.id, o.product_name").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_name", "product_category", "price", "order_date", "user_id", "name", "created_at"}))

	_, err := service.GetOrder(context.Background(), orderID)
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestOrderService_GetOrdersInRange(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	rng := ResolveDateRange(models.TimeFilterThisMonth, now)

	firstID := uuid.New()
	secondID := uuid.New()
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "product_name", "product_category", "price", "order_date", "user_id", "name", "created_at"}).
		AddRow(firstID, "Монитор", "Electronics", 250.0, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC), userID, "Анна", now).
		AddRow(secondID, "Книга", "Books", 20.0, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), userID, "Анна", now)

	mock.ExpectQuery("SELECT o.id, o.product_name").
		WithArgs(rng.From).
		WillReturnRows(rows)

	orders, err := service.GetOrdersInRange(context.Background(), rng)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != firstID || orders[0].CustomerName != "Анна" {
		t.Fatalf("unexpected first order: %+v", orders[0])
	}
}

func TestOrderService_GetUserOrders_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	userID := uuid.New()

	mock.ExpectQuery("SELECT o.id, o.product_name").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_name", "product_category", "price", "order_date", "user_id", "name", "created_at"}))

	orders, err := service.GetUserOrders(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestOrderService_CountOrders(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	rng := models.DateRange{From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).
		WithArgs(rng.From).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := service.CountOrders(context.Background(), rng)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 orders, got %d", count)
	}
}

func TestOrderService_UpdateOrder_Success(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	orderID := uuid.New()

	price := 99.90
	name := "Клавиатура"
	req := &models.UpdateOrderRequest{ProductName: &name, Price: &price}

	mock.ExpectExec("UPDATE orders SET").
		WithArgs("Клавиатура", 99.90, orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := service.UpdateOrder(context.Background(), orderID, req); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderService_UpdateOrder_NoFields(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())

	err := service.UpdateOrder(context.Background(), uuid.New(), &models.UpdateOrderRequest{})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOrderService_UpdateOrder_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	orderID := uuid.New()
	price := 10.0

	mock.ExpectExec("UPDATE orders SET").
		WithArgs(10.0, orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.UpdateOrder(context.Background(), orderID, &models.UpdateOrderRequest{Price: &price})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestOrderService_DeleteOrder(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewOrderService(db, newTestLogger())
	orderID := uuid.New()

	mock.ExpectExec("DELETE FROM orders").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := service.DeleteOrder(context.Background(), orderID); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	mock.ExpectExec("DELETE FROM orders").
		WithArgs(orderID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := service.DeleteOrder(context.Background(), orderID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
