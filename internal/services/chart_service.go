package services

import (
	"context"
	"fmt"
	"math"

	"order-dashboard/internal/database"
	"order-dashboard/internal/logger"
	"order-dashboard/internal/models"
)

// categoryPalette — фиксированная палитра для диаграммы категорий.
// Цвет назначается по позиции группы в выборке, по кругу после шестой.
var categoryPalette = []string{
	"#FF6384",
	"#36A2EB",
	"#FFCE56",
	"#4BC0C0",
	"#9966FF",
	"#FF9F40",
}

// ChartService строит выборки для графиков дашборда.
type ChartService struct {
	db  *database.DB
	log *logger.Logger
}

// NewChartService создает новый сервис графиков.
func NewChartService(db *database.DB, log *logger.Logger) *ChartService {
	return &ChartService{
		db:  db,
		log: log,
	}
}

// RevenueSeries возвращает выручку по календарным месяцам периода,
// отсортированную по возрастанию ключа "YYYY-MM". Месяцы без заказов
// не включаются: серия разреженная.
func (s *ChartService) RevenueSeries(ctx context.Context, rng models.DateRange) ([]models.RevenuePoint, error) {
	cond, args := rangeCondition(rng)

	query := fmt.Sprintf(`
		SELECT to_char(order_date, 'YYYY-MM') AS month,
		       COALESCE(SUM(price), 0) AS revenue
		FROM orders
		WHERE %s
		GROUP BY month
		ORDER BY month ASC
	`, cond)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue series: %w", err)
	}
	defer rows.Close()

	var series []models.RevenuePoint
	for rows.Next() {
		var point models.RevenuePoint
		if err := rows.Scan(&point.Month, &point.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue point: %w", err)
		}
		series = append(series, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue series: %w", err)
	}

	return series, nil
}

// CategoryDistribution возвращает распределение заказов по категориям с
// процентами и цветами. При нуле заказов в периоде проценты равны 0.
func (s *ChartService) CategoryDistribution(ctx context.Context, rng models.DateRange) ([]models.CategorySlice, error) {
	cond, args := rangeCondition(rng)

	query := fmt.Sprintf(`
		SELECT product_category AS name,
		       COUNT(*) AS value
		FROM orders
		WHERE %s
		GROUP BY product_category
	`, cond)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load category distribution: %w", err)
	}
	defer rows.Close()

	var slices []models.CategorySlice
	total := 0
	for rows.Next() {
		var slice models.CategorySlice
		if err := rows.Scan(&slice.Name, &slice.Value); err != nil {
			return nil, fmt.Errorf("failed to scan category slice: %w", err)
		}
		total += slice.Value
		slices = append(slices, slice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category distribution: %w", err)
	}

	for i := range slices {
		slices[i].Percentage = percentOf(slices[i].Value, total)
		slices[i].Color = categoryPalette[i%len(categoryPalette)]
	}

	return slices, nil
}

// percentOf возвращает округленную долю в процентах; нулевой total дает 0.
func percentOf(value, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(value) / float64(total) * 100))
}
