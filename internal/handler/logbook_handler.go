package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LogbookHandler struct {
	logbookService     service.LogbookService
	leaderboardService service.LeaderboardService
	log                *zap.Logger
}

func NewLogbookHandler(logbook service.LogbookService, leaderboard service.LeaderboardService, log *zap.Logger) *LogbookHandler {
	return &LogbookHandler{logbookService: logbook, leaderboardService: leaderboard, log: log}
}

func (h *LogbookHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/leaderboard", h.Leaderboard)
	r.Pilot.GET("/logbook", h.Logbook)
	r.Pilot.GET("/logbook/export", h.Export)
}

// Leaderboard ranks approved pilots
// @Summary      Leaderboard
// @Tags         logbook
// @Produce      json
// @Security     BearerAuth
// @Param        metric  query     string  false  "xp (default), hours or flights"
// @Param        limit   query     int     false  "Rows (default 20, max 100)"
// @Success      200     {object}  response.Response{data=[]service.LeaderboardEntry}
// @Failure      400     {object}  response.Response
// @Router       /api/leaderboard [get]
func (h *LogbookHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.leaderboardService.Leaderboard(c.Request.Context(), c.Query("metric"), limit)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, rows)
}

// Logbook returns the caller's approved and pending reports with career totals
// @Summary      Logbook
// @Tags         logbook
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=service.LogbookResponse}
// @Router       /api/logbook [get]
func (h *LogbookHandler) Logbook(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	p := pagination.Parse(c)

	book, err := h.logbookService.Logbook(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, book)
}

// Export streams the logbook as CSV
// @Summary      Export logbook
// @Tags         logbook
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {file}  file
// @Router       /api/logbook/export [get]
func (h *LogbookHandler) Export(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	filename := fmt.Sprintf("logbook-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	// headers are gone once rows start streaming, so a late failure can only be logged
	if err := h.logbookService.ExportCSV(c.Request.Context(), userID, c.Writer); err != nil {
		h.log.Error("logbook export failed", zap.String("user_id", userID.String()), zap.Error(err))
		_ = c.Error(err)
	}
}
