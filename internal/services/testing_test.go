package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"pest_crm/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared in-memory database keeps gorm's connection pool on
	// the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(&models.Order{}, &models.DailyAdSpend{}, &models.MonthlyPlan{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// recordingRemover captures best-effort file removals.
type recordingRemover struct {
	mu      sync.Mutex
	removed []string
}

func (r *recordingRemover) Remove(reference string) {
	r.mu.Lock()
	r.removed = append(r.removed, reference)
	r.mu.Unlock()
}

func (r *recordingRemover) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

// fakeTokenStore is the in-memory TokenStore used instead of Redis.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]time.Time)}
}

func (s *fakeTokenStore) SaveToken(tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[tokenID] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *fakeTokenStore) TokenExists(tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[tokenID]
	return ok && time.Now().Before(expiry), nil
}

func (s *fakeTokenStore) RevokeToken(tokenID string) error {
	s.mu.Lock()
	delete(s.tokens, tokenID)
	s.mu.Unlock()
	return nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func phonesPtr(p []string) *[]string { return &p }
