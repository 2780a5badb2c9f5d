package handler

import (
	"io"
	"net/http"
	"strconv"

	"vaops/internal/middleware"
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// maxImportSize caps route catalog uploads.
const maxImportSize = 10 << 20

// ReferenceHandler serves the admin-maintained lookup tables: aircraft types, bases,
// flight-hour multipliers and the route catalog.
type ReferenceHandler struct {
	referenceService service.ReferenceService
	catalogService   service.CatalogService
}

func NewReferenceHandler(referenceService service.ReferenceService, catalogService service.CatalogService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService, catalogService: catalogService}
}

func (h *ReferenceHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/aircraft", h.ListAircraft)
	r.Pilot.GET("/bases", h.ListBases)
	r.Pilot.GET("/routes/catalog", h.ListCatalog)
	// registration form needs the base list before the account exists
	r.Public.GET("/api/public/bases", h.ListBases)

	admin := r.Admin
	{
		admin.GET("/aircraft", h.ListAllAircraft)
		admin.POST("/aircraft", h.CreateAircraft)
		admin.PUT("/aircraft/:id", h.UpdateAircraft)
		admin.DELETE("/aircraft/:id", h.DeleteAircraft)

		admin.GET("/bases", h.ListAllBases)
		admin.POST("/bases", h.CreateBase)
		admin.PUT("/bases/:id", h.UpdateBase)
		admin.DELETE("/bases/:id", h.DeleteBase)

		admin.GET("/hour-multipliers", h.ListHourRules)
		admin.POST("/hour-multipliers", h.CreateHourRule)
		admin.PUT("/hour-multipliers/:id", h.UpdateHourRule)
		admin.DELETE("/hour-multipliers/:id", h.DeleteHourRule)

		admin.POST("/routes/catalog/import", h.ImportCatalog)
	}
}

// --- aircraft ---

// @Summary      List active aircraft types
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Aircraft}
// @Router       /api/aircraft [get]
func (h *ReferenceHandler) ListAircraft(c *gin.Context) {
	h.listAircraft(c, true)
}

func (h *ReferenceHandler) ListAllAircraft(c *gin.Context) {
	h.listAircraft(c, false)
}

func (h *ReferenceHandler) listAircraft(c *gin.Context, activeOnly bool) {
	rows, err := h.referenceService.ListAircraft(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// @Summary      Create aircraft type
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.AircraftRequest  true  "Aircraft"
// @Success      201      {object}  response.Response{data=model.Aircraft}
// @Failure      409      {object}  response.Response
// @Router       /api/admin/aircraft [post]
func (h *ReferenceHandler) CreateAircraft(c *gin.Context) {
	var req service.AircraftRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	a, err := h.referenceService.CreateAircraft(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, a)
}

func (h *ReferenceHandler) UpdateAircraft(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.AircraftRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	a, err := h.referenceService.UpdateAircraft(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, a)
}

func (h *ReferenceHandler) DeleteAircraft(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.referenceService.DeleteAircraft(c.Request.Context(), adminID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Aircraft deleted")
}

// --- bases ---

// @Summary      List active bases
// @Tags         reference
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Base}
// @Router       /api/bases [get]
func (h *ReferenceHandler) ListBases(c *gin.Context) {
	h.listBases(c, true)
}

func (h *ReferenceHandler) ListAllBases(c *gin.Context) {
	h.listBases(c, false)
}

func (h *ReferenceHandler) listBases(c *gin.Context, activeOnly bool) {
	rows, err := h.referenceService.ListBases(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// @Summary      Create base
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BaseRequest  true  "Base"
// @Success      201      {object}  response.Response{data=model.Base}
// @Router       /api/admin/bases [post]
func (h *ReferenceHandler) CreateBase(c *gin.Context) {
	var req service.BaseRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	b, err := h.referenceService.CreateBase(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, b)
}

func (h *ReferenceHandler) UpdateBase(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.BaseRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	b, err := h.referenceService.UpdateBase(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, b)
}

func (h *ReferenceHandler) DeleteBase(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.referenceService.DeleteBase(c.Request.Context(), adminID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Base deleted")
}

// --- flight-hour multipliers ---

func (h *ReferenceHandler) ListHourRules(c *gin.Context) {
	rows, err := h.referenceService.ListHourRules(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// @Summary      Create flight-hour multiplier
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.HourRuleRequest  true  "Bracket"
// @Success      201      {object}  response.Response{data=model.FlightHourMultiplier}
// @Router       /api/admin/hour-multipliers [post]
func (h *ReferenceHandler) CreateHourRule(c *gin.Context) {
	var req service.HourRuleRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	m, err := h.referenceService.CreateHourRule(c.Request.Context(), adminID, req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, m)
}

func (h *ReferenceHandler) UpdateHourRule(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req service.HourRuleRequest
	if !bindJSON(c, &req) {
		return
	}
	adminID, _ := middleware.UserID(c)

	m, err := h.referenceService.UpdateHourRule(c.Request.Context(), adminID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, m)
}

func (h *ReferenceHandler) DeleteHourRule(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	adminID, _ := middleware.UserID(c)

	if err := h.referenceService.DeleteHourRule(c.Request.Context(), adminID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Multiplier deleted")
}

// --- route catalog ---

// @Summary      Route catalog
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Param        departure  query     string  false  "Departure ICAO"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/routes/catalog [get]
func (h *ReferenceHandler) ListCatalog(c *gin.Context) {
	p := pagination.Parse(c)

	rows, total, err := h.catalogService.List(c.Request.Context(), service.CatalogFilter{
		Departure: c.Query("departure"),
		Page:      p.Page,
		Limit:     p.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, p.Wrap(rows, total))
}

// ImportCatalog loads routes from a CSV body or a multipart "file" field
// @Summary      Import route catalog
// @Description  Header flight_number,departure,arrival,duration[,aircraft_family]. Duration is minutes or H:MM.
// @Tags         admin
// @Accept       text/csv
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        replace  query     bool  false  "Deactivate the current catalog first"
// @Param        file     formData  file  false  "CSV file"
// @Success      200      {object}  response.Response{data=service.ImportResult}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/routes/catalog/import [post]
func (h *ReferenceHandler) ImportCatalog(c *gin.Context) {
	replace, _ := strconv.ParseBool(c.Query("replace"))
	adminID, _ := middleware.UserID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	var src io.Reader = c.Request.Body
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "Missing file field: "+err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "Cannot read uploaded file")
			return
		}
		defer f.Close()
		src = f
	}

	res, err := h.catalogService.Import(c.Request.Context(), &adminID, src, replace)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, res)
}
