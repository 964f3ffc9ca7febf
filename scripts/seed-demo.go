package main

import (
	"fmt"
	"log"
	"time"

	"pest_crm/internal/config"
	"pest_crm/internal/database"
	"pest_crm/internal/migrations"
	"pest_crm/internal/repository"
	"pest_crm/internal/services"
)

// Seeds a demo month of orders, ad spend and a plan for local development.
func main() {
	fmt.Println("Seeding demo data...")

	cfg := config.Load()
	logger := config.GetLogger()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)

	uploadService, err := services.NewUploadService(cfg.UploadsDir, cfg.MaxUploadMB, logger)
	if err != nil {
		log.Fatal("Failed to prepare uploads directory:", err)
	}
	orderService := services.NewOrderService(orderRepo, uploadService)
	statsService := services.NewStatisticsService(orderRepo, statsRepo)

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	day := func(d int) string { return fmt.Sprintf("%04d-%02d-%02d", year, month, d) }

	first, err := orderService.CreateOrder(&services.CreateOrderRequest{
		OrderType:  "primary",
		ClientName: "Ivanov",
		ClientType: "individual",
		Pest:       "cockroaches",
		ObjectType: "apartment",
		Volume:     "2 rooms",
		Address:    "Lenina st. 10, apt 5",
		Phones:     []string{"+79001234567"},
		Date:       day(5),
		Time:       "10:00",
		BasePrice:  5000,
		Manager:    "Olga",
	})
	if err != nil {
		log.Fatal("Failed to create demo order:", err)
	}

	// Complete it with a repeat visit: exercises the payout math and the
	// follow-up spawn in one call.
	status := "completed"
	finalAmount, masterPercent := 6000.0, 40.0
	masterName := "Sergey"
	repeatDate := day(19)
	if _, err := orderService.UpdateOrder(first.ID, &services.UpdateOrderRequest{
		Status:        &status,
		FinalAmount:   &finalAmount,
		MasterPercent: &masterPercent,
		MasterName:    &masterName,
		RepeatDate:    &repeatDate,
	}); err != nil {
		log.Fatal("Failed to complete demo order:", err)
	}

	if _, err := orderService.CreateOrder(&services.CreateOrderRequest{
		OrderType:  "primary",
		ClientName: "Romashka LLC",
		ClientType: "legal",
		Pest:       "rodents",
		ObjectType: "warehouse",
		Address:    "Industrialnaya st. 3",
		Phones:     []string{"+74950001122", "+74950001123"},
		Date:       day(12),
		Time:       "09:00",
		BasePrice:  15000,
		Comment:    "access through the side gate",
		Manager:    "Olga",
	}); err != nil {
		log.Fatal("Failed to create demo order:", err)
	}

	for d, amount := range map[int]float64{3: 1200, 5: 800, 12: 1500} {
		if _, err := statsService.UpsertAdSpend(day(d), amount); err != nil {
			log.Fatal("Failed to seed ad spend:", err)
		}
	}

	primaryCount, primarySum := 40, 240000.0
	netProfit := 120000.0
	if _, err := statsService.UpsertPlan(year, month, &services.UpdatePlanRequest{
		PrimaryCount: &primaryCount,
		PrimarySum:   &primarySum,
		NetProfit:    &netProfit,
	}); err != nil {
		log.Fatal("Failed to seed plan:", err)
	}

	fmt.Println("Demo data seeded successfully!")
}
