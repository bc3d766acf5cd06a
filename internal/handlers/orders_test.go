package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-dashboard/internal/apperror"
	"order-dashboard/internal/models"

	"github.com/google/uuid"
)

type stubOrderService struct {
	created   *models.Order
	createErr error
	order     *models.Order
	getErr    error
	inRange   []*models.Order
	userList  []*models.Order
	updateErr error
	deleteErr error
}

func (s *stubOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	return s.created, s.createErr
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.getErr
}

func (s *stubOrderService) GetOrdersInRange(ctx context.Context, rng models.DateRange) ([]*models.Order, error) {
	return s.inRange, nil
}

func (s *stubOrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.userList, nil
}

func (s *stubOrderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderRequest) error {
	return s.updateErr
}

func (s *stubOrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.deleteErr
}

type fakeRedisCache struct {
	data map[string][]byte
}

func newFakeRedisCache() *fakeRedisCache {
	return &fakeRedisCache{data: make(map[string][]byte)}
}

func (f *fakeRedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeRedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeRedisCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeRedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}

func sampleOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		ProductName:     "Монитор",
		ProductCategory: "Electronics",
		Price:           250.0,
		OrderDate:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		UserID:          userID,
		CreatedAt:       time.Now(),
	}
}

func TestOrderHandler_CreateOrder_Success(t *testing.T) {
	userID := uuid.New()
	order := sampleOrder(userID)
	producer := &recordingProducer{}
	h := NewOrderHandler(&stubOrderService{created: order}, producer, newFakeRedisCache(), newTestLogger())

	body := `{"productName":"Монитор","productCategory":"Electronics","price":250,"orderDate":"2024-03-10"}`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), userID, models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.Orders(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(producer.created) != 1 || producer.created[0].ID != order.ID {
		t.Fatalf("expected order created event, got %+v", producer.created)
	}
}

func TestOrderHandler_CreateOrder_NoClaims(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{}, &recordingProducer{}, newFakeRedisCache(), newTestLogger())

	body := `{"productName":"Монитор","productCategory":"Electronics","price":250,"orderDate":"2024-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Orders(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rr.Code)
	}
}

func TestOrderHandler_CreateOrder_ValidationError(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{createErr: apperror.Validation("price must be positive", nil)},
		&recordingProducer{}, newFakeRedisCache(), newTestLogger())

	body := `{"productName":"Монитор","productCategory":"Electronics","price":-1,"orderDate":"2024-03-10"}`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.Orders(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderHandler_ListOwnOrders(t *testing.T) {
	userID := uuid.New()
	h := NewOrderHandler(&stubOrderService{userList: []*models.Order{sampleOrder(userID)}},
		&recordingProducer{}, newFakeRedisCache(), newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/orders", nil), userID, models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.Orders(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var orders []*models.Order
	if err := json.NewDecoder(rr.Body).Decode(&orders); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
}

func TestOrderHandler_GetOrder_OwnerAllowed(t *testing.T) {
	userID := uuid.New()
	order := sampleOrder(userID)
	h := NewOrderHandler(&stubOrderService{order: order}, &recordingProducer{}, newFakeRedisCache(), newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil), userID, models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rr.Code)
	}
}

func TestOrderHandler_GetOrder_StrangerForbidden(t *testing.T) {
	order := sampleOrder(uuid.New())
	h := NewOrderHandler(&stubOrderService{order: order}, &recordingProducer{}, newFakeRedisCache(), newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil), uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for stranger, got %d", rr.Code)
	}
}

func TestOrderHandler_GetOrder_FromCache(t *testing.T) {
	userID := uuid.New()
	order := sampleOrder(userID)
	cache := newFakeRedisCache()
	// Сервис вернул бы ошибку: ответ обязан прийти из кеша
	h := NewOrderHandler(&stubOrderService{getErr: errors.New("db down")}, &recordingProducer{}, cache, newTestLogger())

	if err := cache.Set(context.Background(), "order:"+order.ID.String(), order, time.Minute); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/orders/"+order.ID.String(), nil), userID, models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from cache, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestOrderHandler_UpdateOrder_CustomerForbidden(t *testing.T) {
	order := sampleOrder(uuid.New())
	h := NewOrderHandler(&stubOrderService{order: order}, &recordingProducer{}, newFakeRedisCache(), newTestLogger())

	body := `{"price":99.9}`
	req := withClaims(httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID.String(), strings.NewReader(body)), uuid.New(), models.RoleCustomer)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rr.Code)
	}
}

func TestOrderHandler_UpdateOrder_AdminSuccess(t *testing.T) {
	order := sampleOrder(uuid.New())
	producer := &recordingProducer{}
	h := NewOrderHandler(&stubOrderService{order: order}, producer, newFakeRedisCache(), newTestLogger())

	body := `{"price":99.9}`
	req := withClaims(httptest.NewRequest(http.MethodPut, "/api/orders/"+order.ID.String(), strings.NewReader(body)), uuid.New(), models.RoleAdmin)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(producer.updated) != 1 {
		t.Fatalf("expected order updated event, got %d", len(producer.updated))
	}
}

func TestOrderHandler_DeleteOrder_NotFound(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{deleteErr: apperror.NotFound("order not found", nil)},
		&recordingProducer{}, newFakeRedisCache(), newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/api/orders/"+uuid.NewString(), nil), uuid.New(), models.RoleAdmin)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestOrderHandler_DeleteOrder_AdminSuccess(t *testing.T) {
	producer := &recordingProducer{}
	cache := newFakeRedisCache()
	orderID := uuid.New()
	cache.data["dashboard:This Year"] = []byte("{}")

	h := NewOrderHandler(&stubOrderService{}, producer, cache, newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/api/orders/"+orderID.String(), nil), uuid.New(), models.RoleAdmin)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(producer.deleted) != 1 || producer.deleted[0] != orderID {
		t.Fatalf("expected order deleted event, got %+v", producer.deleted)
	}
	// Кеш дашборда сброшен после изменения данных
	if _, ok := cache.data["dashboard:This Year"]; ok {
		t.Fatal("expected dashboard cache to be invalidated")
	}
}

func TestOrderHandler_InvalidOrderID(t *testing.T) {
	h := NewOrderHandler(&stubOrderService{}, &recordingProducer{}, newFakeRedisCache(), newTestLogger())

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil), uuid.New(), models.RoleAdmin)
	rr := httptest.NewRecorder()
	h.OrderByID(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
