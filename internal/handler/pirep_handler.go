package handler

import (
	"vaops/internal/middleware"
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type PirepHandler struct {
	pirepService service.PirepService
}

func NewPirepHandler(pirepService service.PirepService) *PirepHandler {
	return &PirepHandler{pirepService: pirepService}
}

func (h *PirepHandler) RegisterRoutes(r Routes) {
	pireps := r.Pilot.Group("/pireps")
	{
		pireps.POST("", h.File)
		pireps.GET("/mine", h.ListMine)
		pireps.GET("/:id", h.Get)
	}

	admin := r.Admin.Group("/pireps")
	{
		admin.GET("", h.List)
		admin.PUT("/:id/approve", h.Approve)
		admin.PUT("/:id/reject", h.Reject)
	}
}

// File submits a pilot report
// @Summary      File PIREP
// @Description  With dispatch_leg_id the leg must be dispatched and owned by the caller; route and aircraft default from it.
// @Tags         pireps
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.FilePirepRequest  true  "Report"
// @Success      201      {object}  response.Response{data=service.PirepResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/pireps [post]
func (h *PirepHandler) File(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	var req service.FilePirepRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.pirepService.File(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, p)
}

// @Summary      My PIREPs
// @Tags         pireps
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/pireps/mine [get]
func (h *PirepHandler) ListMine(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	p := pagination.Parse(c)

	rows, total, err := h.pirepService.ListMine(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p.Wrap(rows, total))
}

func (h *PirepHandler) Get(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	id, valid := paramID(c, "id")
	if !valid {
		return
	}

	p, err := h.pirepService.Get(c.Request.Context(), id, userID, middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p)
}

// List returns PIREPs for review
// @Summary      List PIREPs
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved or rejected"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/admin/pireps [get]
func (h *PirepHandler) List(c *gin.Context) {
	p := pagination.Parse(c)

	rows, total, err := h.pirepService.List(c.Request.Context(), service.PirepFilter{
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

// Approve prices the flight and credits the pilot exactly once
// @Summary      Approve PIREP
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "PIREP ID"
// @Success      200  {object}  response.Response{data=service.PirepResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/admin/pireps/{id}/approve [put]
func (h *PirepHandler) Approve(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	p, err := h.pirepService.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p)
}

// Reject returns the leg to dispatched so the pilot can refile
// @Summary      Reject PIREP
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true   "PIREP ID"
// @Param        payload  body      service.ReviewRequest  false  "Reason"
// @Success      200      {object}  response.Response{data=service.PirepResponse}
// @Router       /api/admin/pireps/{id}/reject [put]
func (h *PirepHandler) Reject(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	var req service.ReviewRequest
	_ = c.ShouldBindJSON(&req)

	p, err := h.pirepService.Reject(c.Request.Context(), id, adminID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p)
}
