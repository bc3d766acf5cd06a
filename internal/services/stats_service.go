package services

import (
	"context"
	"fmt"
	"time"

	"order-dashboard/internal/database"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
)

// StatsService агрегирует сводные показатели заказов за период.
type StatsService struct {
	db  *database.DB
	log *logger.Logger
	now func() time.Time
}

// NewStatsService создает новый сервис статистики.
func NewStatsService(db *database.DB, log *logger.Logger) *StatsService {
	return &StatsService{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// Snapshot возвращает выручку, количество заказов и уникальных покупателей за
// период, плюс рост относительно скользящего месяца. Пустой период дает нули,
// а не ошибку.
func (s *StatsService) Snapshot(ctx context.Context, rng models.DateRange) (*models.StatsSnapshot, error) {
	cond, args := rangeCondition(rng)

	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(price), 0) AS revenue,
		       COUNT(*) AS orders_count
		FROM orders
		WHERE %s
	`, cond)

	snapshot := &models.StatsSnapshot{}
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&snapshot.TotalRevenue, &snapshot.TotalOrders); err != nil {
		return nil, fmt.Errorf("failed to load stats summary: %w", err)
	}

	customersQuery := fmt.Sprintf(`
		SELECT COUNT(DISTINCT user_id) AS customers
		FROM orders
		WHERE %s
	`, cond)

	row = s.db.QueryRowContext(ctx, customersQuery, args...)
	if err := row.Scan(&snapshot.CustomerCount); err != nil {
		return nil, fmt.Errorf("failed to load customer count: %w", err)
	}

	prevRevenue, prevOrders, err := s.trailingMonthBaseline(ctx)
	if err != nil {
		return nil, err
	}

	snapshot.RevenueGrowth = growthPercent(snapshot.TotalRevenue, prevRevenue)
	snapshot.OrderGrowth = growthPercent(float64(snapshot.TotalOrders), float64(prevOrders))
	// Исторический baseline по покупателям не хранится, рост всегда 0.
	snapshot.CustomerGrowth = 0

	return snapshot, nil
}

// trailingMonthBaseline считает выручку и заказы за скользящий месяц
// [now - 1 месяц, now). Baseline фиксированный и не зависит от выбранного
// периода: рост всегда сравнивается с последним месяцем.
func (s *StatsService) trailingMonthBaseline(ctx context.Context) (float64, int, error) {
	now := s.now()
	from := now.AddDate(0, -1, 0)

	query := `
		SELECT COALESCE(SUM(price), 0) AS revenue,
		       COUNT(*) AS orders_count
		FROM orders
		WHERE order_date >= $1 AND order_date < $2
	`

	var revenue float64
	var orders int
	row := s.db.QueryRowContext(ctx, query, from, now)
	if err := row.Scan(&revenue, &orders); err != nil {
		return 0, 0, fmt.Errorf("failed to load growth baseline: %w", err)
	}

	return revenue, orders, nil
}

// growthPercent возвращает относительный рост в процентах. Нулевой baseline
// дает 0, а не Inf/NaN.
func growthPercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}
