package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService services.StatisticsService
}

func NewStatisticsHandler(statsService services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

// Monthly handles GET /api/statistics/:year/:month
func (h *StatisticsHandler) Monthly(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid month")
		return
	}

	report, err := h.statsService.MonthlyReport(year, month)
	if errors.Is(err, services.ErrInvalidDate) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

// Period handles GET /api/statistics/period?startDate=&endDate=
func (h *StatisticsHandler) Period(c *gin.Context) {
	startDate, endDate := c.Query("startDate"), c.Query("endDate")
	if startDate == "" || endDate == "" {
		respondError(c, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	report, err := h.statsService.PeriodReport(startDate, endDate)
	if errors.Is(err, services.ErrInvalidDate) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

// UpsertAdSpend handles PUT /api/statistics/ad-spend
func (h *StatisticsHandler) UpsertAdSpend(c *gin.Context) {
	var req struct {
		Date   string  `json:"date" binding:"required"`
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "date is required")
		return
	}

	entry, err := h.statsService.UpsertAdSpend(req.Date, req.Amount)
	if errors.Is(err, services.ErrInvalidDate) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, entry)
}

// UpsertPlan handles PUT /api/statistics/plan/:year/:month
func (h *StatisticsHandler) UpsertPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid month")
		return
	}

	var req services.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	plan, err := h.statsService.UpsertPlan(year, month, &req)
	if errors.Is(err, services.ErrInvalidDate) {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondInternal(c, err)
		return
	}
	respondData(c, http.StatusOK, plan)
}
