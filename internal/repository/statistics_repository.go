package repository

import (
	"pest_crm/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatisticsRepository interface {
	UpsertAdSpend(date string, amount float64) (*models.DailyAdSpend, error)
	ListAdSpend(startDate, endDate string) ([]models.DailyAdSpend, error)
	GetOrCreatePlan(year, month int) (*models.MonthlyPlan, error)
	UpsertPlan(year, month int, fields map[string]interface{}) (*models.MonthlyPlan, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) UpsertAdSpend(date string, amount float64) (*models.DailyAdSpend, error) {
	entry := models.DailyAdSpend{Date: date, AdSpend: amount}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"ad_spend", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller gets the persisted row, id included.
	var saved models.DailyAdSpend
	if err := r.db.First(&saved, "date = ?", date).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *statisticsRepository) ListAdSpend(startDate, endDate string) ([]models.DailyAdSpend, error) {
	var entries []models.DailyAdSpend
	err := r.db.Where("date BETWEEN ? AND ?", startDate, endDate).Find(&entries).Error
	return entries, err
}

func (r *statisticsRepository) GetOrCreatePlan(year, month int) (*models.MonthlyPlan, error) {
	var plan models.MonthlyPlan
	err := r.db.Where(models.MonthlyPlan{Year: year, Month: month}).FirstOrCreate(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *statisticsRepository) UpsertPlan(year, month int, fields map[string]interface{}) (*models.MonthlyPlan, error) {
	plan, err := r.GetOrCreatePlan(year, month)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		if err := r.db.Model(plan).Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	var saved models.MonthlyPlan
	if err := r.db.First(&saved, plan.ID).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
