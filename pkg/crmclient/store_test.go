package crmclient

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pest_crm/internal/handlers"
	"pest_crm/internal/models"
	"pest_crm/internal/repository"
	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func (s *memoryTokenStore) SaveToken(tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[tokenID] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *memoryTokenStore) TokenExists(tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[tokenID]
	return ok && time.Now().Before(expiry), nil
}

func (s *memoryTokenStore) RevokeToken(tokenID string) error {
	s.mu.Lock()
	delete(s.tokens, tokenID)
	s.mu.Unlock()
	return nil
}

// newTestServer runs the real HTTP surface over sqlite, so the client is
// exercised against exactly what production serves.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.DailyAdSpend{}, &models.MonthlyPlan{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	uploadService, err := services.NewUploadService(t.TempDir(), 10, log)
	if err != nil {
		t.Fatalf("NewUploadService: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	tokens := &memoryTokenStore{tokens: make(map[string]time.Time)}

	router := handlers.SetupRouter(handlers.RouterDeps{
		AuthService:       services.NewAuthService("test-secret", testPassword, "", 7, tokens),
		OrderService:      services.NewOrderService(orderRepo, uploadService),
		StatisticsService: services.NewStatisticsService(orderRepo, statsRepo),
		UploadService:     uploadService,
		Logger:            log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newLoggedInClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient(server.URL)
	if err := client.Login(testPassword); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return client
}

func testOrderRequest() *services.CreateOrderRequest {
	return &services.CreateOrderRequest{
		OrderType:  "primary",
		ClientName: "Ivan Petrov",
		ClientType: "individual",
		Pest:       "cockroaches",
		ObjectType: "apartment",
		Address:    "Lenina 12",
		Date:       "2024-06-15",
		Time:       "14:00",
		BasePrice:  3000,
		Phones:     []string{"+7 (495) 111-22-33"},
		Manager:    "Olga",
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestClientLoginFailureKeepsNoToken(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)

	if err := client.Login("wrong"); err == nil {
		t.Fatal("wrong password should fail")
	} else if err.Error() != "invalid password" {
		t.Fatalf("error should carry the server message, got %q", err)
	}
	if client.Token() != "" {
		t.Fatal("failed login must not leave a token behind")
	}

	if err := client.VerifyToken(); err == nil {
		t.Fatal("verify without token should fail")
	}
}

func TestClientOrderRoundTrip(t *testing.T) {
	server := newTestServer(t)
	client := newLoggedInClient(t, server)

	created, err := client.CreateOrder(testOrderRequest())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if created.Status != string(models.OrderInProgress) {
		t.Fatalf("status = %q, want in_progress", created.Status)
	}

	fetched, err := client.GetOrder(created.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if fetched.ClientName != "Ivan Petrov" || len(fetched.Phones) != 1 {
		t.Fatalf("fetched order mismatch: %+v", fetched)
	}

	updated, err := client.UpdateOrder(created.ID, &services.UpdateOrderRequest{
		Status:        strPtr("completed"),
		FinalAmount:   floatPtr(6000),
		MasterPercent: floatPtr(40),
	})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if updated.MasterIncome == nil || *updated.MasterIncome != 2400 {
		t.Fatalf("masterIncome = %v, want 2400", updated.MasterIncome)
	}

	if err := client.DeleteOrder(created.ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if _, err := client.GetOrder(created.ID); err == nil || err.Error() != "Order not found" {
		t.Fatalf("deleted order should 404 with the server message, got %v", err)
	}
}

func TestClientTokenClearedOn401(t *testing.T) {
	server := newTestServer(t)
	client := newLoggedInClient(t, server)

	client.SetToken("not-a-valid-token")
	if _, err := client.ListOrders(OrdersQuery{}); err == nil {
		t.Fatal("expected auth failure")
	}
	if client.Token() != "" {
		t.Fatal("401 should clear the stored token")
	}
}

func TestStoreReconcilesOrders(t *testing.T) {
	server := newTestServer(t)
	store := NewStore(newLoggedInClient(t, server))

	if err := store.FetchOrders(2024, 6); err != nil {
		t.Fatalf("FetchOrders: %v", err)
	}
	if len(store.Orders()) != 0 {
		t.Fatal("fresh database should have no orders")
	}

	created, err := store.CreateOrder(testOrderRequest())
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if orders := store.Orders(); len(orders) != 1 || orders[0].ID != created.ID {
		t.Fatalf("snapshot after create: %+v", orders)
	}

	if _, err := store.UpdateOrder(created.ID, &services.UpdateOrderRequest{
		Comment: strPtr("call ahead"),
	}); err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if orders := store.Orders(); orders[0].Comment != "call ahead" {
		t.Fatalf("snapshot not reconciled after update: %+v", orders[0])
	}

	if err := store.DeleteOrder(created.ID); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if len(store.Orders()) != 0 {
		t.Fatal("snapshot should be empty after delete")
	}
	if store.Err() != nil {
		t.Fatalf("lastErr should be nil, got %v", store.Err())
	}
}

func TestStoreSearchLeavesSnapshotIntact(t *testing.T) {
	server := newTestServer(t)
	store := NewStore(newLoggedInClient(t, server))

	if _, err := store.CreateOrder(testOrderRequest()); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := store.FetchOrders(2024, 6); err != nil {
		t.Fatalf("FetchOrders: %v", err)
	}

	found, err := store.SearchOrders("999", "", "")
	if err != nil {
		t.Fatalf("SearchOrders: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("search for unknown phone: %+v", found)
	}
	if len(store.Orders()) != 1 {
		t.Fatal("search must not touch the calendar snapshot")
	}
}

func TestStoreFlushesAdSpendBeforeStatistics(t *testing.T) {
	server := newTestServer(t)
	store := NewStore(newLoggedInClient(t, server))

	store.SetAdSpend("2024-06-10", 750)
	store.SetAdSpend("2024-06-11", 300)

	if err := store.FetchStatistics(2024, 6); err != nil {
		t.Fatalf("FetchStatistics: %v", err)
	}

	report := store.Statistics()
	if report == nil {
		t.Fatal("statistics snapshot empty")
	}
	if report.Daily[9].AdSpend != 750 || report.Daily[10].AdSpend != 300 {
		t.Fatalf("pending ad-spend edits must be flushed before the fetch: %+v %+v",
			report.Daily[9], report.Daily[10])
	}

	// Re-flushing with nothing pending is a no-op.
	if err := store.FlushAdSpend(); err != nil {
		t.Fatalf("FlushAdSpend: %v", err)
	}
}

func TestStoreFailedFlushKeepsEditsDirty(t *testing.T) {
	server := newTestServer(t)
	store := NewStore(newLoggedInClient(t, server))

	store.SetAdSpend("not-a-date", 100)
	if err := store.FlushAdSpend(); err == nil {
		t.Fatal("invalid date should fail the flush")
	}

	// The entry stays dirty; fixing it lets the next flush succeed.
	store.SetAdSpend("not-a-date", 0)
	if err := store.FlushAdSpend(); err == nil {
		t.Fatal("still-invalid date should keep failing")
	}
}

func TestStoreUpdatePlanRefreshesSnapshot(t *testing.T) {
	server := newTestServer(t)
	store := NewStore(newLoggedInClient(t, server))

	if err := store.FetchStatistics(2024, 6); err != nil {
		t.Fatalf("FetchStatistics: %v", err)
	}

	plan, err := store.UpdatePlan(2024, 6, &services.UpdatePlanRequest{
		TotalSum: floatPtr(100000),
	})
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if plan.TotalSum != 100000 {
		t.Fatalf("plan.TotalSum = %v", plan.TotalSum)
	}
	if snapshot := store.Statistics(); snapshot.Plan.TotalSum != 100000 {
		t.Fatalf("snapshot plan not refreshed: %+v", snapshot.Plan)
	}
}

func TestStoreCloseFlushesPendingEdits(t *testing.T) {
	server := newTestServer(t)
	client := newLoggedInClient(t, server)
	store := NewStore(client)

	store.SetAdSpend("2024-06-20", 450)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	report, err := client.MonthlyStatistics(2024, 6)
	if err != nil {
		t.Fatalf("MonthlyStatistics: %v", err)
	}
	if report.Daily[19].AdSpend != 450 {
		t.Fatalf("June 20 ad-spend = %v, want 450", report.Daily[19].AdSpend)
	}
}
