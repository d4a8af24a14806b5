package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"casino/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleChallenge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	challengerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	target := options["user"].UserValue(s)
	challengedID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid target user")
		return
	}
	wager := options["wager"].IntValue()

	challenge, err := b.challengeService.Propose(context.Background(), challengerID, challengedID, wager)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "The wager must be positive, and you cannot challenge yourself.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "One of you is already in a game. Finish it first.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "Both players need an account first (`/new`).")
		case errors.Is(err, models.ErrInsufficientFunds):
			b.respondWithError(s, i, "One of you cannot cover that wager.")
		default:
			log.Errorf("Error proposing challenge: %v", err)
			b.respondWithError(s, i, "Failed to create challenge")
		}
		return
	}

	challengerName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	challengedName := GetDisplayName(s, i.GuildID, target.ID)

	embed := &discordgo.MessageEmbed{
		Title: "⚔️ Blackjack Duel",
		Description: fmt.Sprintf("**%s** challenges **%s** to a duel for **%s**!\n\n%s, do you accept?",
			challengerName, challengedName, FormatBalance(challenge.Wager), Mention(challengedID)),
		Color: 0x5865F2,
	}

	components := []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("challenge_accept_%d", challengerID),
				},
				&discordgo.Button{
					Label:    "Deny",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("challenge_deny_%d", challengerID),
				},
				&discordgo.Button{
					Label:    "Withdraw",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("challenge_withdraw_%d", challengerID),
				},
			},
		},
	}

	b.respondWithEmbed(s, i, embed, components)
}

func (b *Bot) handleChallengeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	customID := i.MessageComponentData().CustomID
	parts := strings.Split(customID, "_")
	if len(parts) != 3 {
		b.respondWithError(s, i, "Invalid interaction")
		return
	}
	challengerID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid interaction")
		return
	}

	var action models.ChallengeAction
	switch parts[1] {
	case "accept":
		action = models.ChallengeActionAccept
	case "deny":
		action = models.ChallengeActionDeny
	case "withdraw":
		action = models.ChallengeActionWithdraw
	default:
		b.respondWithError(s, i, "Invalid interaction")
		return
	}

	session, err := b.challengeService.Respond(context.Background(), actorID, challengerID, action)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "That challenge is no longer pending.")
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "This challenge is not yours to answer.")
		case errors.Is(err, models.ErrInsufficientFunds):
			b.respondWithError(s, i, "One of you can no longer cover the wager. The challenge is off.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "One of you joined another game. The challenge is off.")
		default:
			log.Errorf("Error responding to challenge: %v", err)
			b.respondWithError(s, i, "Failed to respond to challenge")
		}
		return
	}

	b.closeInteractiveMessage(s, i)

	switch action {
	case models.ChallengeActionDeny:
		b.respond(s, i, fmt.Sprintf("🚫 **%s** denied the duel.",
			GetDisplayName(s, i.GuildID, i.Member.User.ID)))
	case models.ChallengeActionWithdraw:
		b.respond(s, i, fmt.Sprintf("↩️ **%s** withdrew their challenge.",
			GetDisplayName(s, i.GuildID, i.Member.User.ID)))
	case models.ChallengeActionAccept:
		b.respondWithEmbed(s, i, b.duelEmbed(s, i.GuildID, session), duelComponents())
	}
}

func (b *Bot) handleBlackjackInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	playerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	var (
		session *models.BlackjackSession
		result  *models.DuelResult
	)
	switch i.MessageComponentData().CustomID {
	case "blackjack_hit":
		session, result, err = b.blackjackService.Hit(context.Background(), playerID)
	case "blackjack_stand":
		session, result, err = b.blackjackService.Stand(context.Background(), playerID)
	default:
		b.respondWithError(s, i, "Invalid interaction")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "You are not in a duel.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "It's not your turn.")
		default:
			log.Errorf("Error playing blackjack turn: %v", err)
			b.respondWithError(s, i, "Failed to play turn")
		}
		return
	}

	b.closeInteractiveMessage(s, i)

	if result != nil {
		b.respondWithEmbed(s, i, b.duelResultEmbed(s, i.GuildID, session, result), nil)
		return
	}
	b.respondWithEmbed(s, i, b.duelEmbed(s, i.GuildID, session), duelComponents())
}

// closeInteractiveMessage disables the buttons on the message the
// interaction came from, so a resolved challenge or turn cannot be
// clicked twice
func (b *Bot) closeInteractiveMessage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Message == nil {
		return
	}
	disabled := DisableComponents(i.Message.Components)
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    i.ChannelID,
		ID:         i.Message.ID,
		Components: &disabled,
	})
	if err != nil {
		log.Errorf("Error disabling message components: %v", err)
	}
}

func duelComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					Label:    "Hit",
					Style:    discordgo.PrimaryButton,
					CustomID: "blackjack_hit",
				},
				&discordgo.Button{
					Label:    "Call",
					Style:    discordgo.SecondaryButton,
					CustomID: "blackjack_stand",
				},
			},
		},
	}
}
