package models

import "time"

// DashboardSummary feeds the cards and charts of the dashboard page.
type DashboardSummary struct {
	TotalWebsiteVisits  int64           `json:"total_website_visits"`
	TotalStoreVisits    int64           `json:"total_store_visits"`
	TotalRevenue        float64         `json:"total_revenue"`
	TotalProducts       int64           `json:"total_products"`
	TotalStock          int64           `json:"total_stock"`
	WebsiteVisitsChange float64         `json:"website_visits_change"`
	StoreVisitsChange   float64         `json:"store_visits_change"`
	WebsiteVisitsTrend  string          `json:"website_visits_trend"`
	StoreVisitsTrend    string          `json:"store_visits_trend"`
	ProductsByCategory  []CategoryCount `json:"products_by_category"`
	WebsiteVisitsByDay  []DailyPoint    `json:"website_visits_by_day"`
	StoreVisitsByDay    []DailyPoint    `json:"store_visits_by_day"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DailyPoint struct {
	Date   string `json:"date"`
	Visits int64  `json:"visits"`
}
