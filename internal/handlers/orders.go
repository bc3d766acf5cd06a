package handlers

import (
	"encoding/json"
	"net/http"

	"order-dashboard/internal/auth"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
	"order-dashboard/internal/redis"

	"github.com/google/uuid"
)

// OrderHandler представляет обработчик заказов
type OrderHandler struct {
	orderService OrderService
	producer     EventProducer
	redisClient  RedisClient
	log          *logger.Logger
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService OrderService, producer EventProducer, redisClient RedisClient, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		producer:     producer,
		redisClient:  redisClient,
		log:          log,
	}
}

// Orders диспетчеризует запросы к коллекции /api/orders
func (h *OrderHandler) Orders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrder(w, r)
	case http.MethodGet:
		h.listOwnOrders(w, r)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// OrderByID диспетчеризует запросы к /api/orders/{id}
func (h *OrderHandler) OrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := extractUUIDFromPath(r.URL.Path, "/api/orders/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getOrder(w, r, orderID)
	case http.MethodPut:
		h.updateOrder(w, r, orderID)
	case http.MethodDelete:
		h.deleteOrder(w, r, orderID)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// createOrder создает заказ от имени аутентифицированного покупателя
func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}

	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create order")
		return
	}

	// Публикация события в Kafka
	if err := h.producer.PublishOrderCreated(order); err != nil {
		h.log.WithError(err).Error("Failed to publish order created event")
		// Не возвращаем ошибку клиенту, так как заказ уже создан
	}

	// Кеширование заказа и сброс кеша дашборда
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, order.ID.String())
	if err := h.redisClient.Set(r.Context(), cacheKey, order, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache order")
	}
	h.invalidateDashboard(r)

	writeJSONResponse(w, http.StatusCreated, order)
}

// listOwnOrders возвращает заказы аутентифицированного покупателя
func (h *OrderHandler) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Invalid user ID in token")
		return
	}

	orders, err := h.orderService.GetUserOrders(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get orders")
		return
	}

	writeJSONResponse(w, http.StatusOK, orders)
}

// getOrder возвращает заказ владельцу или администратору
func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	// Попытка получить из кеша
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, orderID.String())
	var cached models.Order
	if err := h.redisClient.Get(r.Context(), cacheKey, &cached); err == nil {
		if !h.canAccessOrder(claims, &cached) {
			writeErrorResponse(w, http.StatusForbidden, "Access denied")
			return
		}
		h.log.WithField("order_id", orderID).Debug("Order retrieved from cache")
		writeJSONResponse(w, http.StatusOK, &cached)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get order")
		return
	}

	if !h.canAccessOrder(claims, order) {
		writeErrorResponse(w, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.redisClient.Set(r.Context(), cacheKey, order, defaultCacheTTL); err != nil {
		h.log.WithError(err).Error("Failed to cache order")
	}

	writeJSONResponse(w, http.StatusOK, order)
}

// updateOrder изменяет заказ (только администратор)
func (h *OrderHandler) updateOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.orderService.UpdateOrder(r.Context(), orderID, &req); err != nil {
		writeServiceError(w, h.log, err, "Failed to update order")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to reload order")
		return
	}

	if err := h.producer.PublishOrderUpdated(order); err != nil {
		h.log.WithError(err).Error("Failed to publish order updated event")
	}

	// Инвалидация кешей
	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, orderID.String())
	if err := h.redisClient.Delete(r.Context(), cacheKey); err != nil {
		h.log.WithError(err).Error("Failed to invalidate order cache")
	}
	h.invalidateDashboard(r)

	h.log.WithField("order_id", orderID).Info("Order updated")
	writeJSONResponse(w, http.StatusOK, order)
}

// deleteOrder удаляет заказ (только администратор)
func (h *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request, orderID uuid.UUID) {
	if !h.requireAdmin(w, r) {
		return
	}

	if err := h.orderService.DeleteOrder(r.Context(), orderID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete order")
		return
	}

	if err := h.producer.PublishOrderDeleted(orderID); err != nil {
		h.log.WithError(err).Error("Failed to publish order deleted event")
	}

	cacheKey := redis.GenerateKey(redis.KeyPrefixOrder, orderID.String())
	if err := h.redisClient.Delete(r.Context(), cacheKey); err != nil {
		h.log.WithError(err).Error("Failed to invalidate order cache")
	}
	h.invalidateDashboard(r)

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *OrderHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if claims.Role != string(models.RoleAdmin) {
		writeErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return false
	}
	return true
}

// canAccessOrder разрешает доступ владельцу заказа и администратору
func (h *OrderHandler) canAccessOrder(claims *auth.Claims, order *models.Order) bool {
	if claims.Role == string(models.RoleAdmin) {
		return true
	}
	return claims.UserID == order.UserID.String()
}

func (h *OrderHandler) invalidateDashboard(r *http.Request) {
	if err := h.redisClient.DeleteByPrefix(r.Context(), redis.KeyPrefixDashboard); err != nil {
		h.log.WithError(err).Error("Failed to invalidate dashboard cache")
	}
}
