package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	fleetService service.FleetService
}

func NewFleetHandler(fleetService service.FleetService) *FleetHandler {
	return &FleetHandler{fleetService: fleetService}
}

func (h *FleetHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/fleet", h.List)
	r.Pilot.GET("/fleet/:id", h.Get)

	admin := r.Admin.Group("/fleet")
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.PUT("/:id/status", h.SetStatus)
		admin.POST("/release-maintenance", h.ReleaseMaintenance)
	}
}

// List returns the virtual fleet
// @Summary      List fleet
// @Tags         fleet
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "idle, in_flight or maintenance"
// @Success      200     {object}  response.Response{data=[]service.FleetAircraftResponse}
// @Router       /api/fleet [get]
func (h *FleetHandler) List(c *gin.Context) {
	fleet, err := h.fleetService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, fleet)
}

func (h *FleetHandler) Get(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	a, err := h.fleetService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, a)
}

// @Summary      Add airframe
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateFleetAircraftRequest  true  "Airframe"
// @Success      201      {object}  response.Response{data=service.FleetAircraftResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/admin/fleet [post]
func (h *FleetHandler) Create(c *gin.Context) {
	var req service.CreateFleetAircraftRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	a, err := h.fleetService.Create(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, a)
}

func (h *FleetHandler) Update(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.UpdateFleetAircraftRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	a, err := h.fleetService.Update(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, a)
}

// SetStatus forces an airframe's status
// @Summary      Set airframe status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Airframe ID"
// @Param        payload  body      service.SetFleetStatusRequest  true  "Status"
// @Success      200      {object}  response.Response{data=service.FleetAircraftResponse}
// @Router       /api/admin/fleet/{id}/status [put]
func (h *FleetHandler) SetStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.SetFleetStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	a, err := h.fleetService.SetStatus(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, a)
}

// ReleaseMaintenance runs the same check as the scheduler, on demand
// @Summary      Release due maintenance
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ReleaseResult}
// @Router       /api/admin/fleet/release-maintenance [post]
func (h *FleetHandler) ReleaseMaintenance(c *gin.Context) {
	res, err := h.fleetService.ReleaseDueMaintenance(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, res)
}
