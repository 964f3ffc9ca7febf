package models

import "time"

// DailyAdSpend holds one day's marketing expenditure. Rows are upserted by
// date and never deleted in normal operation.
type DailyAdSpend struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Date      string    `json:"date" gorm:"type:varchar(10);uniqueIndex;not null"`
	AdSpend   float64   `json:"adSpend"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MonthlyPlan is the target set of counts and sums for one month, compared
// against actuals in the statistics view. A zero-valued row is created the
// first time a month's statistics are requested.
type MonthlyPlan struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Year           int       `json:"year" gorm:"uniqueIndex:idx_plan_year_month;not null"`
	Month          int       `json:"month" gorm:"uniqueIndex:idx_plan_year_month;not null"`
	PrimaryCount   int       `json:"primaryCount"`
	SecondaryCount int       `json:"secondaryCount"`
	PrimarySum     float64   `json:"primarySum"`
	SecondarySum   float64   `json:"secondarySum"`
	TotalSum       float64   `json:"totalSum"`
	CashDesk       float64   `json:"cashDesk"`
	AdSpend        float64   `json:"adSpend"`
	NetProfit      float64   `json:"netProfit"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
