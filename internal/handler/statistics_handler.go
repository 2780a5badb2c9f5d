package handler

import (
	"time"

	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(r Routes) {
	r.Admin.GET("/statistics", h.GetStatistics)
}

// @Summary      Get dashboard statistics
// @Description  Approved flights, hours, payouts, top aircraft and routes in a time range, plus the review backlog and fleet status
// @Tags         statistics
// @Produce      json
// @Param        start_date query string false "Start Date (RFC3339), defaults to the first day of this month"
// @Param        end_date   query string false "End Date (RFC3339), defaults to now"
// @Success      200 {object} response.Response{data=model.StatisticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Security     BearerAuth
// @Router       /api/admin/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	start, valid := queryTime(c, "start_date")
	if !valid {
		return
	}
	end, valid := queryTime(c, "end_date")
	if !valid {
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), start, end)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

// queryTime parses an optional RFC3339 query parameter. nil means absent.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, "invalid "+name+" format, expected RFC3339")
		return nil, false
	}
	return &t, true
}
