package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pest_crm/internal/repository"
	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles GET /api/orders?date=&month=&year=&status=
func (h *OrderHandler) List(c *gin.Context) {
	filter := repository.OrderFilter{
		Date:   c.Query("date"),
		Status: c.Query("status"),
	}

	monthStr, yearStr := c.Query("month"), c.Query("year")
	if monthStr != "" && yearStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid month")
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid year")
			return
		}
		filter.Month, filter.Year = month, year
	}

	orders, err := h.orderService.ListOrders(filter)
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

// Search handles GET /api/orders/search/query?phone=&address=&date=.
// All filters optional; none at all legitimately returns every order.
func (h *OrderHandler) Search(c *gin.Context) {
	orders, err := h.orderService.SearchOrders(c.Query("phone"), c.Query("address"), c.Query("date"))
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(&req)
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusCreated, order)
}

func (h *OrderHandler) Update(c *gin.Context) {
	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Param("id"), &req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	err := h.orderService.DeleteOrder(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondMessage(c, "Order deleted")
}
