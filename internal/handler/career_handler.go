package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type CareerHandler struct {
	careerService service.CareerService
}

func NewCareerHandler(careerService service.CareerService) *CareerHandler {
	return &CareerHandler{careerService: careerService}
}

func (h *CareerHandler) RegisterRoutes(r Routes) {
	career := r.Pilot.Group("/career")
	{
		career.POST("/auto-assign", h.AutoAssign)
		career.POST("/requests", h.SubmitRequest)
		career.GET("/requests/mine", h.ListMine)
	}

	admin := r.Admin.Group("/career-requests")
	{
		admin.GET("", h.List)
		admin.PUT("/:id/assign", h.Assign)
		admin.PUT("/:id/reject", h.Reject)
	}
}

// AutoAssign builds a closed multi-leg chain from the pilot's base
// @Summary      Auto-assign career
// @Description  Refuses while the pilot still has unfinished legs. Reserves an idle airframe of the chosen type.
// @Tags         career
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AutoAssignRequest  false  "Preferred aircraft"
// @Success      201      {object}  response.Response{data=service.CareerAssignment}
// @Failure      409      {object}  response.Response
// @Router       /api/career/auto-assign [post]
func (h *CareerHandler) AutoAssign(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	var req service.AutoAssignRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	out, err := h.careerService.AutoAssign(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, out)
}

// SubmitRequest files a pending career request for an admin to assign
// @Summary      Request career
// @Tags         career
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CareerRequestDTO  true  "Request"
// @Success      201      {object}  response.Response{data=service.CareerRequestResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/career/requests [post]
func (h *CareerHandler) SubmitRequest(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	var req service.CareerRequestDTO
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.careerService.SubmitRequest(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, out)
}

func (h *CareerHandler) ListMine(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	rows, err := h.careerService.ListMine(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, rows)
}

// List returns career requests for review
// @Summary      List career requests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/admin/career-requests [get]
func (h *CareerHandler) List(c *gin.Context) {
	p := pagination.Parse(c)

	rows, total, err := h.careerService.List(c.Request.Context(), service.CareerFilter{
		Status: c.Query("status"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p.Wrap(rows, total))
}

// Assign runs auto-assignment for the request's pilot and approves the request
// @Summary      Assign career request
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Career request ID"
// @Success      200  {object}  response.Response{data=service.CareerAssignment}
// @Failure      409  {object}  response.Response
// @Router       /api/admin/career-requests/{id}/assign [put]
func (h *CareerHandler) Assign(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	out, err := h.careerService.AssignRequest(c.Request.Context(), id, adminID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}

// Reject closes a pending career request
// @Summary      Reject career request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "Career request ID"
// @Param        payload  body      service.ReviewRequest  false  "Notes"
// @Success      200      {object}  response.Response{data=service.CareerRequestResponse}
// @Router       /api/admin/career-requests/{id}/reject [put]
func (h *CareerHandler) Reject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	var req service.ReviewRequest
	_ = c.ShouldBindJSON(&req)

	out, err := h.careerService.RejectRequest(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, out)
}
