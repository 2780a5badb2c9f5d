package handler

import (
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

// ProxyHandler fronts the third-party flight-sim APIs so keys stay server side.
type ProxyHandler struct {
	proxyService service.ProxyService
}

func NewProxyHandler(proxyService service.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxyService: proxyService}
}

func (h *ProxyHandler) RegisterRoutes(r Routes) {
	r.Proxy.GET("/weather/metar", h.METAR)
	r.Proxy.GET("/weather/airport", h.Airport)
	r.Proxy.GET("/if/sessions", h.Sessions)
	r.Proxy.GET("/if/atis/:icao", h.ATIS)
	r.Proxy.GET("/simbrief/ofp", h.LatestOFP)
	r.Proxy.GET("/briefing/:icao", h.Briefing)
}

// METAR proxies aviationweather.gov
// @Summary      METAR
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Param        ids  query     string  true  "Comma separated ICAO codes (max 20)"
// @Success      200  {object}  response.Response{data=[]weather.METAR}
// @Failure      502  {object}  response.Response
// @Router       /api/weather/metar [get]
func (h *ProxyHandler) METAR(c *gin.Context) {
	rows, err := h.proxyService.METARs(c.Request.Context(), c.Query("ids"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// @Summary      Airport info
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Param        ids  query     string  true  "Comma separated ICAO codes (max 20)"
// @Success      200  {object}  response.Response{data=[]weather.Airport}
// @Failure      502  {object}  response.Response
// @Router       /api/weather/airport [get]
func (h *ProxyHandler) Airport(c *gin.Context) {
	rows, err := h.proxyService.Airports(c.Request.Context(), c.Query("ids"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// @Summary      Infinite Flight sessions
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]infiniteflight.Session}
// @Failure      503  {object}  response.Response "IF_API_KEY not set"
// @Router       /api/if/sessions [get]
func (h *ProxyHandler) Sessions(c *gin.Context) {
	rows, err := h.proxyService.Sessions(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}

// ATIS returns the live ATIS text; available=false when the airport has none
// @Summary      ATIS
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Param        icao     path      string  true   "Airport ICAO"
// @Param        session  query     string  false  "Session ID (default busiest)"
// @Success      200      {object}  response.Response{data=service.ATISResponse}
// @Router       /api/if/atis/{icao} [get]
func (h *ProxyHandler) ATIS(c *gin.Context) {
	atis, err := h.proxyService.ATIS(c.Request.Context(), c.Param("icao"), c.Query("session"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, atis)
}

// LatestOFP fetches the newest SimBrief plan of the caller's simbrief username
// @Summary      Latest OFP
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=simbrief.OFP}
// @Failure      404  {object}  response.Response
// @Router       /api/simbrief/ofp [get]
func (h *ProxyHandler) LatestOFP(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	ofp, err := h.proxyService.LatestOFP(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, ofp)
}

// Briefing gathers weather, ATIS, charts and NOTAMs for one airport
// @Summary      Airport briefing
// @Tags         proxy
// @Produce      json
// @Security     BearerAuth
// @Param        icao  path      string  true  "Airport ICAO"
// @Success      200   {object}  response.Response{data=service.Briefing}
// @Router       /api/briefing/{icao} [get]
func (h *ProxyHandler) Briefing(c *gin.Context) {
	b, err := h.proxyService.Briefing(c.Request.Context(), c.Param("icao"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, b)
}
