package crmclient

import (
	"context"
	"sync"
	"time"

	"pest_crm/internal/models"
	"pest_crm/internal/services"
)

// DefaultPollInterval matches the calendar view's refresh cadence.
const DefaultPollInterval = 30 * time.Second

// Store holds a refreshable snapshot of orders and statistics behind a
// mutex, with single-writer update discipline: all mutation goes through
// its action methods, which call the API and reconcile local state.
//
// Ad-spend edits are not sent per keystroke: SetAdSpend only marks the
// value dirty, and FlushAdSpend pushes the accumulated edits. Failed
// flushes keep their entries dirty so the next flush retries them.
type Store struct {
	client *Client

	mu         sync.RWMutex
	orders     []models.Order
	monthStats *services.MonthlyReport
	lastErr    error

	// current calendar view, re-fetched by polling
	viewYear  int
	viewMonth int
	viewDate  string

	dirtyAdSpend map[string]float64
}

func NewStore(client *Client) *Store {
	return &Store{
		client:       client,
		dirtyAdSpend: make(map[string]float64),
	}
}

func (s *Store) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Statistics() *services.MonthlyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthStats
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Store) FetchOrders(year, month int) error {
	orders, err := s.client.ListOrders(OrdersQuery{Year: year, Month: month})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	s.orders = orders
	s.viewYear, s.viewMonth, s.viewDate = year, month, ""
	return nil
}

func (s *Store) FetchOrdersByDate(date string) error {
	orders, err := s.client.ListOrders(OrdersQuery{Date: date})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	s.orders = orders
	s.viewYear, s.viewMonth, s.viewDate = 0, 0, date
	return nil
}

func (s *Store) CreateOrder(req *services.CreateOrderRequest) (*models.Order, error) {
	order, err := s.client.CreateOrder(req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return nil, err
	}
	s.orders = append(s.orders, *order)
	return order, nil
}

func (s *Store) UpdateOrder(id string, req *services.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.client.UpdateOrder(id, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return nil, err
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i] = *order
			break
		}
	}
	return order, nil
}

func (s *Store) DeleteOrder(id string) error {
	err := s.client.DeleteOrder(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return nil
}

// SearchOrders returns results without touching the calendar snapshot,
// like the search modal.
func (s *Store) SearchOrders(phone, address, date string) ([]models.Order, error) {
	orders, err := s.client.SearchOrders(phone, address, date)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return orders, err
}

// FetchStatistics flushes pending ad-spend edits first, so a period change
// never loses typed-in values.
func (s *Store) FetchStatistics(year, month int) error {
	if err := s.FlushAdSpend(); err != nil {
		return err
	}

	report, err := s.client.MonthlyStatistics(year, month)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	s.monthStats = report
	return nil
}

func (s *Store) FetchStatisticsByPeriod(startDate, endDate string) (*services.PeriodReport, error) {
	if err := s.FlushAdSpend(); err != nil {
		return nil, err
	}

	report, err := s.client.PeriodStatistics(startDate, endDate)

	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return report, err
}

// SetAdSpend records an edit locally; nothing is sent until the next flush.
func (s *Store) SetAdSpend(date string, amount float64) {
	s.mu.Lock()
	s.dirtyAdSpend[date] = amount
	s.mu.Unlock()
}

func (s *Store) FlushAdSpend() error {
	s.mu.Lock()
	pending := make(map[string]float64, len(s.dirtyAdSpend))
	for date, amount := range s.dirtyAdSpend {
		pending[date] = amount
	}
	s.mu.Unlock()

	var firstErr error
	for date, amount := range pending {
		if _, err := s.client.UpdateAdSpend(date, amount); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.mu.Lock()
		// Drop only if the value wasn't edited again mid-flight.
		if s.dirtyAdSpend[date] == amount {
			delete(s.dirtyAdSpend, date)
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	s.lastErr = firstErr
	s.mu.Unlock()
	return firstErr
}

func (s *Store) UpdatePlan(year, month int, req *services.UpdatePlanRequest) (*models.MonthlyPlan, error) {
	plan, err := s.client.UpdatePlan(year, month, req)

	s.mu.Lock()
	s.lastErr = err
	if err == nil && s.monthStats != nil && s.monthStats.Plan != nil &&
		s.monthStats.Plan.Year == year && s.monthStats.Plan.Month == month {
		s.monthStats.Plan = plan
	}
	s.mu.Unlock()
	return plan, err
}

// StartPolling re-fetches the current calendar view until ctx is done.
func (s *Store) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refreshView()
			}
		}
	}()
}

func (s *Store) refreshView() {
	s.mu.RLock()
	year, month, date := s.viewYear, s.viewMonth, s.viewDate
	s.mu.RUnlock()

	switch {
	case date != "":
		s.FetchOrdersByDate(date)
	case year != 0 && month != 0:
		s.FetchOrders(year, month)
	}
}

// Close flushes pending ad-spend edits, mirroring the page-unload flush.
func (s *Store) Close() error {
	return s.FlushAdSpend()
}
