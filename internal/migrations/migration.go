package migrations

import (
	"log"
	"time"

	"pest_crm/internal/models"
	"pest_crm/internal/repository"

	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and makes sure the current
// month already has a plan row. Never drops tables: the CRM owns live
// booking and revenue data.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Order{},
		&models.DailyAdSpend{},
		&models.MonthlyPlan{},
	)
	if err != nil {
		return err
	}

	if err := ensureCurrentPlan(db); err != nil {
		log.Printf("Warning: failed to create current month plan: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

func ensureCurrentPlan(db *gorm.DB) error {
	statsRepo := repository.NewStatisticsRepository(db)
	now := time.Now()
	_, err := statsRepo.GetOrCreatePlan(now.Year(), int(now.Month()))
	return err
}
