package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type DispatchHandler struct {
	dispatchService service.DispatchService
}

func NewDispatchHandler(dispatchService service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

func (h *DispatchHandler) RegisterRoutes(r Routes) {
	dispatch := r.Pilot.Group("/dispatch")
	{
		dispatch.GET("/legs", h.ListLegs)
		dispatch.GET("/groups/:id", h.GetGroup)
		dispatch.PUT("/legs/:id/dispatch", h.Dispatch)
		dispatch.GET("/legs/:id/simbrief-link", h.SimbriefLink)
	}
}

// ListLegs returns the caller's legs ordered by group and leg number
// @Summary      List dispatch legs
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "assigned, dispatched, awaiting_approval or completed"
// @Success      200     {object}  response.Response{data=[]service.DispatchLegResponse}
// @Router       /api/dispatch/legs [get]
func (h *DispatchHandler) ListLegs(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	legs, err := h.dispatchService.ListLegs(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, legs)
}

// @Summary      Get dispatch group
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dispatch group ID"
// @Success      200  {object}  response.Response{data=[]service.DispatchLegResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/dispatch/groups/{id} [get]
func (h *DispatchHandler) GetGroup(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	groupID, valid := paramID(c, "id")
	if !valid {
		return
	}

	legs, err := h.dispatchService.GetGroup(c.Request.Context(), userID, groupID, middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, legs)
}

// Dispatch moves a leg from assigned to dispatched
// @Summary      Dispatch leg
// @Description  Earlier legs of the chain must already be flown. attach_ofp stores the pilot's latest SimBrief plan on the leg.
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Leg ID"
// @Param        payload  body      service.DispatchLegRequest  false  "Options"
// @Success      200      {object}  response.Response{data=service.DispatchLegResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/dispatch/legs/{id}/dispatch [put]
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	legID, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.DispatchLegRequest
	_ = c.ShouldBindJSON(&req)

	leg, err := h.dispatchService.DispatchLeg(c.Request.Context(), userID, legID, req)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, leg)
}

// @Summary      SimBrief dispatch link
// @Tags         dispatch
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Leg ID"
// @Success      200  {object}  response.Response{data=service.SimbriefLinkResponse}
// @Router       /api/dispatch/legs/{id}/simbrief-link [get]
func (h *DispatchHandler) SimbriefLink(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	legID, valid := paramID(c, "id")
	if !valid {
		return
	}

	link, err := h.dispatchService.SimbriefLink(c.Request.Context(), userID, legID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, link)
}
