package services

import (
	"context"
	"time"

	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
	"order-dashboard/internal/redis"

	"golang.org/x/sync/errgroup"
)

// DashboardService собирает полный ответ дашборда из четырех независимых
// выборок. Выборки выполняются параллельно; первая ошибка отменяет остальные.
type DashboardService struct {
	stats  *StatsService
	charts *ChartService
	orders *OrderService
	cache  *redis.Client
	log    *logger.Logger

	cacheTTL time.Duration
	now      func() time.Time
}

// NewDashboardService создает новый сервис дашборда. cache может быть nil,
// нулевой cacheTTL отключает кеширование.
func NewDashboardService(stats *StatsService, charts *ChartService, orders *OrderService, cache *redis.Client, log *logger.Logger, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{
		stats:    stats,
		charts:   charts,
		orders:   orders,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Load возвращает данные дашборда за период фильтра.
func (s *DashboardService) Load(ctx context.Context, filter models.TimeFilter) (*models.DashboardData, error) {
	if cached := s.fromCache(ctx, filter); cached != nil {
		return cached, nil
	}

	rng := ResolveDateRange(filter, s.now())

	data := &models.DashboardData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snapshot, err := s.stats.Snapshot(gctx, rng)
		if err != nil {
			return err
		}
		data.Stats = snapshot
		return nil
	})

	g.Go(func() error {
		series, err := s.charts.RevenueSeries(gctx, rng)
		if err != nil {
			return err
		}
		data.RevenueChart = series
		return nil
	})

	g.Go(func() error {
		slices, err := s.charts.CategoryDistribution(gctx, rng)
		if err != nil {
			return err
		}
		data.CategoryChart = slices
		return nil
	})

	g.Go(func() error {
		orders, err := s.orders.GetOrdersInRange(gctx, rng)
		if err != nil {
			return err
		}
		data.RecentOrders = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.toCache(ctx, filter, data)

	return data, nil
}

func (s *DashboardService) fromCache(ctx context.Context, filter models.TimeFilter) *models.DashboardData {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}

	key := redis.GenerateKey(redis.KeyPrefixDashboard, string(filter))
	data := &models.DashboardData{}
	if err := s.cache.Get(ctx, key, data); err != nil {
		return nil
	}

	s.log.WithField("filter", filter).Debug("Dashboard served from cache")
	return data
}

func (s *DashboardService) toCache(ctx context.Context, filter models.TimeFilter, data *models.DashboardData) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	key := redis.GenerateKey(redis.KeyPrefixDashboard, string(filter))
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		// Кеш не критичен: ответ уже собран
		s.log.WithField("filter", filter).Warnf("Failed to cache dashboard: %v", err)
	}
}
