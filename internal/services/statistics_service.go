package services

import (
	"errors"
	"fmt"
	"time"

	"pest_crm/internal/models"
	"pest_crm/internal/repository"
)

const dateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// DailyStat is one calendar day of the report. Every day in the requested
// range gets a row, zero-valued when nothing happened.
type DailyStat struct {
	Date           string  `json:"date"`
	PrimaryCount   int     `json:"primaryCount"`
	SecondaryCount int     `json:"secondaryCount"`
	PrimarySum     float64 `json:"primarySum"`
	SecondarySum   float64 `json:"secondarySum"`
	TotalSum       float64 `json:"totalSum"`
	CashDesk       float64 `json:"cashDesk"`
	AdSpend        float64 `json:"adSpend"`
	NetProfit      float64 `json:"netProfit"`
}

// StatTotals is the per-field sum of the daily rows, nothing recomputed.
type StatTotals struct {
	PrimaryCount   int     `json:"primaryCount"`
	SecondaryCount int     `json:"secondaryCount"`
	PrimarySum     float64 `json:"primarySum"`
	SecondarySum   float64 `json:"secondarySum"`
	TotalSum       float64 `json:"totalSum"`
	CashDesk       float64 `json:"cashDesk"`
	AdSpend        float64 `json:"adSpend"`
	NetProfit      float64 `json:"netProfit"`
}

type StatPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type MonthlyReport struct {
	Daily  []DailyStat         `json:"daily"`
	Totals StatTotals          `json:"totals"`
	Plan   *models.MonthlyPlan `json:"plan"`
}

type PeriodReport struct {
	Daily  []DailyStat `json:"daily"`
	Totals StatTotals  `json:"totals"`
	Period StatPeriod  `json:"period"`
}

type UpdatePlanRequest struct {
	PrimaryCount   *int     `json:"primaryCount"`
	SecondaryCount *int     `json:"secondaryCount"`
	PrimarySum     *float64 `json:"primarySum"`
	SecondarySum   *float64 `json:"secondarySum"`
	TotalSum       *float64 `json:"totalSum"`
	CashDesk       *float64 `json:"cashDesk"`
	AdSpend        *float64 `json:"adSpend"`
	NetProfit      *float64 `json:"netProfit"`
}

type StatisticsService interface {
	MonthlyReport(year, month int) (*MonthlyReport, error)
	PeriodReport(startDate, endDate string) (*PeriodReport, error)
	UpsertAdSpend(date string, amount float64) (*models.DailyAdSpend, error)
	UpsertPlan(year, month int, req *UpdatePlanRequest) (*models.MonthlyPlan, error)
}

type statisticsService struct {
	orderRepo repository.OrderRepository
	statsRepo repository.StatisticsRepository
}

func NewStatisticsService(orderRepo repository.OrderRepository, statsRepo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{orderRepo: orderRepo, statsRepo: statsRepo}
}

func (s *statisticsService) MonthlyReport(year, month int) (*MonthlyReport, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, ErrInvalidDate
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	daily, totals, err := s.buildRange(start, end)
	if err != nil {
		return nil, err
	}

	// First request for a month materializes its zero-valued plan.
	plan, err := s.statsRepo.GetOrCreatePlan(year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly plan: %w", err)
	}

	return &MonthlyReport{Daily: daily, Totals: totals, Plan: plan}, nil
}

func (s *statisticsService) PeriodReport(startDate, endDate string) (*PeriodReport, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, ErrInvalidDate
	}

	daily, totals, err := s.buildRange(start, end)
	if err != nil {
		return nil, err
	}

	return &PeriodReport{
		Daily:  daily,
		Totals: totals,
		Period: StatPeriod{StartDate: startDate, EndDate: endDate},
	}, nil
}

func (s *statisticsService) UpsertAdSpend(date string, amount float64) (*models.DailyAdSpend, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.statsRepo.UpsertAdSpend(date, amount)
}

func (s *statisticsService) UpsertPlan(year, month int, req *UpdatePlanRequest) (*models.MonthlyPlan, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, ErrInvalidDate
	}

	fields := map[string]interface{}{}
	if req.PrimaryCount != nil {
		fields["primary_count"] = *req.PrimaryCount
	}
	if req.SecondaryCount != nil {
		fields["secondary_count"] = *req.SecondaryCount
	}
	if req.PrimarySum != nil {
		fields["primary_sum"] = *req.PrimarySum
	}
	if req.SecondarySum != nil {
		fields["secondary_sum"] = *req.SecondarySum
	}
	if req.TotalSum != nil {
		fields["total_sum"] = *req.TotalSum
	}
	if req.CashDesk != nil {
		fields["cash_desk"] = *req.CashDesk
	}
	if req.AdSpend != nil {
		fields["ad_spend"] = *req.AdSpend
	}
	if req.NetProfit != nil {
		fields["net_profit"] = *req.NetProfit
	}

	return s.statsRepo.UpsertPlan(year, month, fields)
}

func (s *statisticsService) buildRange(start, end time.Time) ([]DailyStat, StatTotals, error) {
	startStr := start.Format(dateLayout)
	endStr := end.Format(dateLayout)

	orders, err := s.orderRepo.List(repository.OrderFilter{
		StartDate: startStr,
		EndDate:   endStr,
		Status:    string(models.OrderCompleted),
	})
	if err != nil {
		return nil, StatTotals{}, fmt.Errorf("failed to load completed orders: %w", err)
	}

	adSpend, err := s.statsRepo.ListAdSpend(startStr, endStr)
	if err != nil {
		return nil, StatTotals{}, fmt.Errorf("failed to load ad spend: %w", err)
	}

	daily := BuildDailyStats(start, end, orders, adSpend)
	return daily, SumDailyStats(daily), nil
}

// BuildDailyStats walks every calendar day of [start, end] and reduces that
// day's completed orders plus its ad-spend row into one DailyStat. Days
// with no data still emit a zero row. Pure function of its inputs.
func BuildDailyStats(start, end time.Time, orders []models.Order, adSpend []models.DailyAdSpend) []DailyStat {
	ordersByDate := make(map[string][]models.Order)
	for _, o := range orders {
		ordersByDate[o.Date] = append(ordersByDate[o.Date], o)
	}
	spendByDate := make(map[string]float64, len(adSpend))
	for _, entry := range adSpend {
		spendByDate[entry.Date] = entry.AdSpend
	}

	var daily []DailyStat
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(dateLayout)
		stat := DailyStat{Date: dateStr, AdSpend: spendByDate[dateStr]}

		for _, o := range ordersByDate[dateStr] {
			amount := 0.0
			if o.FinalAmount != nil {
				amount = *o.FinalAmount
			}
			if o.OrderType == string(models.OrderSecondary) {
				stat.SecondaryCount++
				stat.SecondarySum += amount
			} else {
				stat.PrimaryCount++
				stat.PrimarySum += amount
			}
			// Stored value, deliberately not recomputed here.
			if o.CashDesk != nil {
				stat.CashDesk += *o.CashDesk
			}
		}

		stat.TotalSum = stat.PrimarySum + stat.SecondarySum
		stat.NetProfit = stat.CashDesk - stat.AdSpend
		daily = append(daily, stat)
	}
	return daily
}

// SumDailyStats folds the daily rows into period totals by plain addition.
func SumDailyStats(daily []DailyStat) StatTotals {
	var totals StatTotals
	for _, day := range daily {
		totals.PrimaryCount += day.PrimaryCount
		totals.SecondaryCount += day.SecondaryCount
		totals.PrimarySum += day.PrimarySum
		totals.SecondarySum += day.SecondarySum
		totals.TotalSum += day.TotalSum
		totals.CashDesk += day.CashDesk
		totals.AdSpend += day.AdSpend
		totals.NetProfit += day.NetProfit
	}
	return totals
}
