package handler

import (
	"encoding/json"
	"net/http"

	"vaops/internal/discordbot"
	"vaops/pkg/response"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
)

// DiscordHandler receives Discord interaction webhooks. Discord expects its own JSON
// shape here, not the API envelope.
type DiscordHandler struct {
	bot *discordbot.Bot
}

func NewDiscordHandler(bot *discordbot.Bot) *DiscordHandler {
	return &DiscordHandler{bot: bot}
}

func (h *DiscordHandler) RegisterRoutes(r Routes) {
	r.Public.POST("/api/discord/interactions", h.Interactions)
}

// Interactions handles PING and the career/status slash commands
// @Summary      Discord interactions
// @Tags         discord
// @Accept       json
// @Produce      json
// @Param        X-Signature-Ed25519    header    string  true  "Request signature"
// @Param        X-Signature-Timestamp  header    string  true  "Signature timestamp"
// @Success      200  {object}  object
// @Failure      401  {object}  response.Response
// @Router       /api/discord/interactions [post]
func (h *DiscordHandler) Interactions(c *gin.Context) {
	if !h.bot.Verify(c.Request) {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid request signature"))
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(c.Request.Body).Decode(&interaction); err != nil {
		badRequest(c, "Invalid interaction payload")
		return
	}

	c.JSON(http.StatusOK, h.bot.Respond(c.Request.Context(), &interaction))
}
