// Package discordbot answers the slash commands of the career Discord application.
//
// Discord posts interactions to an HTTP endpoint. The bot verifies the Ed25519 signature,
// answers PING, and maps the commands to the career and dispatch services of the pilot whose
// profile carries the caller's discord id.
package discordbot

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vaops/internal/model"
	"vaops/internal/service"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Slash command names
const (
	CommandCareer = "career"
	CommandStatus = "status"
)

// PilotLookup resolves the profile linked to a discord account.
type PilotLookup interface {
	GetByDiscordID(ctx context.Context, discordID string) (*model.Profile, error)
}

type Bot struct {
	publicKey ed25519.PublicKey
	careers   service.CareerService
	dispatch  service.DispatchService
	pilots    PilotLookup
	log       *zap.Logger
}

// New parses the hex public key of the Discord application. A bot built with an empty key
// still answers Respond, but Verify rejects every request.
func New(publicKeyHex string, careers service.CareerService, dispatch service.DispatchService, pilots PilotLookup, log *zap.Logger) (*Bot, error) {
	b := &Bot{careers: careers, dispatch: dispatch, pilots: pilots, log: log}
	if publicKeyHex == "" {
		return b, nil
	}
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, errors.New("DISCORD_PUBLIC_KEY must be a hex encoded ed25519 public key")
	}
	b.publicKey = key
	return b, nil
}

// Verify checks X-Signature-Ed25519 over timestamp + body. The request body stays readable.
// Without a public key nothing can be verified, so nothing passes.
func (b *Bot) Verify(r *http.Request) bool {
	if b.publicKey == nil {
		return false
	}
	return discordgo.VerifyInteraction(r, b.publicKey)
}

// Respond builds the reply to one interaction.
func (b *Bot) Respond(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	switch i.Type {
	case discordgo.InteractionPing:
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
	case discordgo.InteractionApplicationCommand:
	default:
		return reply("Unsupported interaction.")
	}

	discordID := callerID(i)
	if discordID == "" {
		return reply("Could not identify your Discord account.")
	}

	switch name := i.ApplicationCommandData().Name; name {
	case CommandCareer:
		return b.career(ctx, discordID)
	case CommandStatus:
		return b.status(ctx, discordID)
	default:
		return reply(fmt.Sprintf("Unknown command `%s`.", name))
	}
}

func (b *Bot) career(ctx context.Context, discordID string) *discordgo.InteractionResponse {
	out, err := b.careers.AutoAssignForDiscord(ctx, discordID)
	if err != nil {
		return b.failure("career", discordID, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "New career from **%s** on the %s", out.Base, out.AircraftType)
	if out.FleetRegistration != "" {
		fmt.Fprintf(&sb, " (%s)", out.FleetRegistration)
	}
	sb.WriteString(":\n")
	writeLegs(&sb, out.Legs)
	return reply(sb.String())
}

func (b *Bot) status(ctx context.Context, discordID string) *discordgo.InteractionResponse {
	pilot, err := b.pilots.GetByDiscordID(ctx, discordID)
	if err != nil {
		return reply("No pilot profile is linked to this Discord account.")
	}
	legs, err := b.dispatch.ListLegs(ctx, pilot.ID, "")
	if err != nil {
		return b.failure("status", discordID, err)
	}

	var open []service.DispatchLegResponse
	for _, l := range legs {
		if l.Status != model.LegCompleted {
			open = append(open, l)
		}
	}
	if len(open) == 0 {
		return reply("No active legs. Use `/career` to get a new assignment.")
	}

	var sb strings.Builder
	sb.WriteString("Your active legs:\n")
	writeLegs(&sb, open)
	return reply(sb.String())
}

// failure turns service errors into a user-facing line; only unexpected ones are logged.
func (b *Bot) failure(command, discordID string, err error) *discordgo.InteractionResponse {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return reply("No pilot profile is linked to this Discord account.")
	case errors.Is(err, service.ErrForbidden):
		return reply("Your account is still pending approval.")
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidState):
		return reply(err.Error())
	}
	b.log.Error("discord command failed", zap.String("command", command), zap.String("discord_id", discordID), zap.Error(err))
	return reply("Something went wrong, try again later.")
}

func writeLegs(sb *strings.Builder, legs []service.DispatchLegResponse) {
	for _, l := range legs {
		fmt.Fprintf(sb, "%d. `%s` %s → %s (%dmin) %s\n", l.LegNumber, l.FlightNumber, l.Departure, l.Arrival, l.DurationMinutes, l.Status)
	}
}

func callerID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// reply answers in the channel, visible only to the caller.
func reply(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}
