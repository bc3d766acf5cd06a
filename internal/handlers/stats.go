package handlers

import (
	"context"
	"net/http"
	"time"

	"order-dashboard/internal/config"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
	"order-dashboard/internal/services"
)

const defaultStatsTimeout = 5 * time.Second

// StatsHandler обрабатывает эндпоинты аналитики дашборда.
// Все эндпоинты принимают query-параметр timeFilter; нераспознанное значение
// молча трактуется как "This Year".
type StatsHandler struct {
	stats     StatsProvider
	charts    ChartProvider
	orders    OrderService
	dashboard DashboardProvider
	log       *logger.Logger
	cfg       *config.AnalyticsConfig
	now       func() time.Time
}

// NewStatsHandler создает новый обработчик аналитики.
func NewStatsHandler(stats StatsProvider, charts ChartProvider, orders OrderService, dashboard DashboardProvider, log *logger.Logger, cfg *config.AnalyticsConfig) *StatsHandler {
	return &StatsHandler{
		stats:     stats,
		charts:    charts,
		orders:    orders,
		dashboard: dashboard,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// GetStats возвращает сводные показатели за период.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	snapshot, err := h.stats.Snapshot(ctx, h.resolveRange(r))
	if err != nil {
		h.log.WithError(err).Error("Failed to load stats")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	writeJSONResponse(w, http.StatusOK, snapshot)
}

// GetRevenueChart возвращает помесячную выручку за период.
func (h *StatsHandler) GetRevenueChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	series, err := h.charts.RevenueSeries(ctx, h.resolveRange(r))
	if err != nil {
		h.log.WithError(err).Error("Failed to load revenue chart")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load revenue chart")
		return
	}

	if series == nil {
		series = []models.RevenuePoint{}
	}
	writeJSONResponse(w, http.StatusOK, series)
}

// GetCategoryChart возвращает распределение заказов по категориям за период.
func (h *StatsHandler) GetCategoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	slices, err := h.charts.CategoryDistribution(ctx, h.resolveRange(r))
	if err != nil {
		h.log.WithError(err).Error("Failed to load category chart")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load category chart")
		return
	}

	if slices == nil {
		slices = []models.CategorySlice{}
	}
	writeJSONResponse(w, http.StatusOK, slices)
}

// GetOrders возвращает заказы периода, новые первыми.
func (h *StatsHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	orders, err := h.orders.GetOrdersInRange(ctx, h.resolveRange(r))
	if err != nil {
		h.log.WithError(err).Error("Failed to load orders")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	if orders == nil {
		orders = []*models.Order{}
	}
	writeJSONResponse(w, http.StatusOK, orders)
}

// GetDashboard возвращает полный состав дашборда одним ответом.
func (h *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	data, err := h.dashboard.Load(ctx, h.timeFilter(r))
	if err != nil {
		h.log.WithError(err).Error("Failed to load dashboard")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	writeJSONResponse(w, http.StatusOK, data)
}

func (h *StatsHandler) timeFilter(r *http.Request) models.TimeFilter {
	if value := r.URL.Query().Get("timeFilter"); value != "" {
		return models.TimeFilter(value)
	}
	if h.cfg != nil && h.cfg.DefaultTimeFilter != "" {
		return models.TimeFilter(h.cfg.DefaultTimeFilter)
	}
	return models.TimeFilterThisYear
}

func (h *StatsHandler) resolveRange(r *http.Request) models.DateRange {
	return services.ResolveDateRange(h.timeFilter(r), h.now())
}

func (h *StatsHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := defaultStatsTimeout
	if h.cfg != nil && h.cfg.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(h.cfg.RequestTimeoutSeconds) * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}
