package handler

import (
	"vaops/internal/service"
	"vaops/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService service.WalletService
}

func NewWalletHandler(walletService service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) RegisterRoutes(r Routes) {
	r.Pilot.GET("/wallet", h.GetWallet)
}

// GetWallet returns the balance and the ledger of rewards and purchases, newest first
// @Summary      Get wallet
// @Tags         shop
// @Security     BearerAuth
// @Produce      json
// @Param        page  query int false "Page number (default 1)"
// @Param        limit query int false "Number of items per page (default 20)"
// @Success      200 {object} response.Response{data=service.WalletResponse}
// @Router       /api/wallet [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	p := pagination.Parse(c)

	res, err := h.walletService.History(c.Request.Context(), userID, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}
