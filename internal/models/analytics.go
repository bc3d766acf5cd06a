package models

import "time"

// TimeFilter описывает именованный отчетный период дашборда.
type TimeFilter string

const (
	TimeFilterThisMonth TimeFilter = "This Month"
	TimeFilterLastMonth TimeFilter = "Last Month"
	TimeFilterThisYear  TimeFilter = "This Year"
	TimeFilterLastYear  TimeFilter = "Last Year"
)

// DateRange задает границы отчетного периода. From всегда включительно.
// To включительно, если задано; nil означает открытый верхний конец
// ("This Month" и "This Year" не ограничены сверху).
type DateRange struct {
	From time.Time
	To   *time.Time
}

// Bounded сообщает, ограничен ли период сверху.
func (r DateRange) Bounded() bool {
	return r.To != nil
}

// StatsSnapshot описывает сводные показатели за период.
// Рост считается относительно фиксированного скользящего месяца,
// а не длины выбранного периода.
type StatsSnapshot struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	CustomerCount  int     `json:"customerCount"`
	RevenueGrowth  float64 `json:"revenueGrowth"`
	OrderGrowth    float64 `json:"orderGrowth"`
	CustomerGrowth float64 `json:"customerGrowth"`
}

// RevenuePoint хранит выручку за один календарный месяц ("YYYY-MM").
type RevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// CategorySlice описывает долю одной категории товаров за период.
type CategorySlice struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

// DashboardData объединяет все выборки дашборда в один ответ.
type DashboardData struct {
	Stats         *StatsSnapshot  `json:"stats"`
	RevenueChart  []RevenuePoint  `json:"revenueChart"`
	CategoryChart []CategorySlice `json:"categoryChart"`
	RecentOrders  []*Order        `json:"recentOrders"`
}
