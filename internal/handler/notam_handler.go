package handler

import (
	"strconv"

	"vaops/internal/middleware"
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type NotamHandler struct {
	notamService service.NotamService
}

func NewNotamHandler(notamService service.NotamService) *NotamHandler {
	return &NotamHandler{notamService: notamService}
}

func (h *NotamHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/notams", h.List)
	r.Pilot.GET("/notams/:id", h.Get)
	r.Pilot.GET("/charts/:icao", h.Charts)

	admin := r.Admin
	{
		admin.POST("/notams", h.Create)
		admin.PUT("/notams/:id", h.Update)
		admin.DELETE("/notams/:id", h.Delete)
		admin.POST("/charts", h.CreateChart)
		admin.DELETE("/charts/:id", h.DeleteChart)
	}
}

// List returns NOTAMs with their markdown body rendered to HTML
// @Summary      List NOTAMs
// @Tags         notams
// @Produce      json
// @Security     BearerAuth
// @Param        airport  query     string  false  "Airport ICAO"
// @Param        active   query     bool    false  "Only notices in force now (default true)"
// @Success      200      {object}  response.Response{data=[]service.NotamResponse}
// @Router       /api/notams [get]
func (h *NotamHandler) List(c *gin.Context) {
	active, err := strconv.ParseBool(c.DefaultQuery("active", "true"))
	if err != nil {
		badRequest(c, "active must be a boolean")
		return
	}

	rows, err := h.notamService.List(c.Request.Context(), service.NotamQuery{
		AirportICAO: c.Query("airport"),
		ActiveOnly:  active,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, rows)
}

func (h *NotamHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	n, err := h.notamService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, n)
}

// @Summary      Create NOTAM
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.NotamRequest  true  "NOTAM"
// @Success      201      {object}  response.Response{data=service.NotamResponse}
// @Router       /api/admin/notams [post]
func (h *NotamHandler) Create(c *gin.Context) {
	var req service.NotamRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	n, err := h.notamService.Create(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, n)
}

func (h *NotamHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.NotamRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	n, err := h.notamService.Update(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, n)
}

func (h *NotamHandler) Delete(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.notamService.Delete(c.Request.Context(), adminID, id); err != nil {
		fail(c, err)
		return
	}

	ok(c, "NOTAM deleted")
}

// Charts lists the published charts of an airport
// @Summary      Airport charts
// @Tags         notams
// @Produce      json
// @Security     BearerAuth
// @Param        icao  path      string  true  "Airport ICAO"
// @Success      200   {object}  response.Response{data=[]model.AeronauticalChart}
// @Router       /api/charts/{icao} [get]
func (h *NotamHandler) Charts(c *gin.Context) {
	charts, err := h.notamService.Charts(c.Request.Context(), c.Param("icao"))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, charts)
}

func (h *NotamHandler) CreateChart(c *gin.Context) {
	var req service.ChartRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	chart, err := h.notamService.CreateChart(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, chart)
}

func (h *NotamHandler) DeleteChart(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.notamService.DeleteChart(c.Request.Context(), adminID, id); err != nil {
		fail(c, err)
		return
	}

	ok(c, "Chart deleted")
}
