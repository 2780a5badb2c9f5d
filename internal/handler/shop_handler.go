package handler

import (
	"vaops/internal/service"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct {
	shopService service.ShopService
}

func NewShopHandler(shopService service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

func (h *ShopHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/shop", h.Catalog)
	r.Pilot.POST("/shop/type-ratings", h.Purchase)
}

// Catalog lists purchasable type ratings with the caller's balance
// @Summary      Shop
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ShopResponse}
// @Router       /api/shop [get]
func (h *ShopHandler) Catalog(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	shop, err := h.shopService.Catalog(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, shop)
}

// Purchase buys a type rating with virtual money
// @Summary      Buy type rating
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PurchaseTypeRatingRequest  true  "Aircraft"
// @Success      201      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      409      {object}  response.Response "already owned or insufficient funds"
// @Router       /api/shop/type-ratings [post]
func (h *ShopHandler) Purchase(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	var req service.PurchaseTypeRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.shopService.PurchaseTypeRating(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}

	created(c, res)
}
