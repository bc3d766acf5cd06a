package services

import (
	"time"

	"order-dashboard/internal/models"
)

// ResolveDateRange преобразует именованный фильтр периода в конкретные границы
// дат. Периоды "This Month" и "This Year" открыты сверху, "Last Month" и
// "Last Year" включают последний календарный день периода. Неизвестный фильтр
// молча трактуется как "This Year".
func ResolveDateRange(filter models.TimeFilter, now time.Time) models.DateRange {
	switch filter {
	case models.TimeFilterThisMonth:
		return models.DateRange{From: startOfMonth(now)}
	case models.TimeFilterLastMonth:
		from := startOfMonth(now).AddDate(0, -1, 0)
		to := startOfMonth(now).AddDate(0, 0, -1)
		return models.DateRange{From: from, To: &to}
	case models.TimeFilterLastYear:
		from := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
		to := time.Date(now.Year()-1, time.December, 31, 0, 0, 0, 0, now.Location())
		return models.DateRange{From: from, To: &to}
	default:
		// "This Year" и все нераспознанные значения
		return models.DateRange{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())}
	}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// rangeCondition строит SQL-условие по границам периода для поля order_date.
// Нумерация placeholder'ов начинается с $1.
func rangeCondition(rng models.DateRange) (string, []interface{}) {
	if rng.To != nil {
		return "order_date >= $1 AND order_date <= $2", []interface{}{rng.From, *rng.To}
	}
	return "order_date >= $1", []interface{}{rng.From}
}
