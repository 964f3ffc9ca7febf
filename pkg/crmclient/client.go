package crmclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"pest_crm/internal/models"
	"pest_crm/internal/services"
)

// Client talks to the CRM REST API. The bearer token obtained at login is
// attached to every request; a 401 clears it, forcing a fresh login, the
// same way the browser client drops its stored token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Login(password string) error {
	var data struct {
		Token     string `json:"token"`
		ExpiresIn string `json:"expiresIn"`
	}
	err := c.do(http.MethodPost, "/api/auth/login", nil, map[string]string{"password": password}, &data)
	if err != nil {
		return err
	}
	c.SetToken(data.Token)
	return nil
}

func (c *Client) VerifyToken() error {
	return c.do(http.MethodGet, "/api/auth/verify", nil, nil, nil)
}

func (c *Client) Logout() error {
	err := c.do(http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

// OrdersQuery mirrors the /api/orders filter parameters.
type OrdersQuery struct {
	Date   string
	Month  int
	Year   int
	Status string
}

func (c *Client) ListOrders(q OrdersQuery) ([]models.Order, error) {
	query := url.Values{}
	if q.Date != "" {
		query.Set("date", q.Date)
	}
	if q.Month != 0 && q.Year != 0 {
		query.Set("month", strconv.Itoa(q.Month))
		query.Set("year", strconv.Itoa(q.Year))
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}

	var orders []models.Order
	if err := c.do(http.MethodGet, "/api/orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(id string) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodGet, "/api/orders/"+id, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) CreateOrder(req *services.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrder(id string, req *services.UpdateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(http.MethodPut, "/api/orders/"+id, nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(id string) error {
	return c.do(http.MethodDelete, "/api/orders/"+id, nil, nil, nil)
}

func (c *Client) SearchOrders(phone, address, date string) ([]models.Order, error) {
	query := url.Values{}
	if phone != "" {
		query.Set("phone", phone)
	}
	if address != "" {
		query.Set("address", address)
	}
	if date != "" {
		query.Set("date", date)
	}

	var orders []models.Order
	if err := c.do(http.MethodGet, "/api/orders/search/query", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) MonthlyStatistics(year, month int) (*services.MonthlyReport, error) {
	var report services.MonthlyReport
	path := fmt.Sprintf("/api/statistics/%d/%d", year, month)
	if err := c.do(http.MethodGet, path, nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) PeriodStatistics(startDate, endDate string) (*services.PeriodReport, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var report services.PeriodReport
	if err := c.do(http.MethodGet, "/api/statistics/period", query, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) UpdateAdSpend(date string, amount float64) (*models.DailyAdSpend, error) {
	body := map[string]interface{}{"date": date, "amount": amount}
	var entry models.DailyAdSpend
	if err := c.do(http.MethodPut, "/api/statistics/ad-spend", nil, body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) UpdatePlan(year, month int, req *services.UpdatePlanRequest) (*models.MonthlyPlan, error) {
	var plan models.MonthlyPlan
	path := fmt.Sprintf("/api/statistics/plan/%d/%d", year, month)
	if err := c.do(http.MethodPut, path, nil, req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) do(method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.SetToken("")
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("unexpected response (%s)", resp.Status)
	}

	if resp.StatusCode >= 300 || !env.Success {
		// Error preference matches the browser client: error, then
		// message, then the bare HTTP status.
		switch {
		case env.Error != "":
			return fmt.Errorf("%s", env.Error)
		case env.Message != "":
			return fmt.Errorf("%s", env.Message)
		default:
			return fmt.Errorf("request failed with status %s", resp.Status)
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
