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

func (b *Bot) handleNewAccount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing discord ID: %v", err)
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	user, err := b.userService.CreateAccount(context.Background(), discordID, i.Member.User.Username)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			b.respondWithError(s, i, "You already have an account. Check it with `/bal`.")
			return
		}
		log.Errorf("Error creating account: %v", err)
		b.respondWithError(s, i, "Failed to create account")
		return
	}

	b.respond(s, i, fmt.Sprintf("🎰 Welcome to the casino, %s! Your account starts with **%s**.",
		GetDisplayName(s, i.GuildID, i.Member.User.ID), FormatBalance(user.Balance)))
}

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	user, err := b.userService.GetUser(context.Background(), discordID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.respondWithError(s, i, "You don't have an account yet. Open one with `/new`.")
			return
		}
		log.Errorf("Error fetching balance: %v", err)
		b.respondWithError(s, i, "Failed to fetch balance")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("💰 Your balance is **%s**.", FormatBalance(user.Balance)),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (b *Bot) handleDeposit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	fromID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	target := options["user"].UserValue(s)
	toID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid target user")
		return
	}
	amount := options["amount"].IntValue()

	if err := b.userService.Deposit(context.Background(), fromID, toID, amount); err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientFunds):
			b.respondWithError(s, i, "You don't have that much to give.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "Both of you need an account first (`/new`).")
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "Transfer amount must be positive, and you cannot pay yourself.")
		default:
			log.Errorf("Error transferring funds: %v", err)
			b.respondWithError(s, i, "Transfer failed")
		}
		return
	}

	b.respond(s, i, fmt.Sprintf("✅ Transferred **%s** to **%s**.",
		FormatBalance(amount), GetDisplayName(s, i.GuildID, target.ID)))
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	users, err := b.userService.Leaderboard(context.Background(), 10)
	if err != nil {
		log.Errorf("Error fetching leaderboard: %v", err)
		b.respondWithError(s, i, "Failed to fetch leaderboard")
		return
	}

	if len(users) == 0 {
		b.respond(s, i, "Nobody has an account yet. Be the first with `/new`!")
		return
	}

	var sb strings.Builder
	medals := []string{"🥇", "🥈", "🥉"}
	for rank, user := range users {
		marker := fmt.Sprintf("%d.", rank+1)
		if rank < len(medals) {
			marker = medals[rank]
		}
		sb.WriteString(fmt.Sprintf("%s **%s** — %s\n",
			marker, GetDisplayNameInt64(s, i.GuildID, user.DiscordID), FormatBalance(user.Balance)))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 High Rollers",
		Description: sb.String(),
		Color:       0xFFD700,
	}
	b.respondWithEmbed(s, i, embed, nil)
}

func (b *Bot) handleRob(s *discordgo.Session, i *discordgo.InteractionCreate) {
	robberID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	target := options["user"].UserValue(s)
	victimID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid target user")
		return
	}

	result, err := b.robberyService.Rob(context.Background(), robberID, victimID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "You can't rob yourself, and your mark needs something worth taking.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "Both of you need an account first (`/new`).")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "You're still laying low. Try again later.")
		default:
			log.Errorf("Error attempting robbery: %v", err)
			b.respondWithError(s, i, "Robbery attempt failed")
		}
		return
	}

	victimName := GetDisplayName(s, i.GuildID, target.ID)
	if result.Success {
		b.respond(s, i, fmt.Sprintf("🦹 **Heist!** You robbed **%s** of **%s**.",
			victimName, FormatBalance(result.Amount)))
		return
	}
	b.respond(s, i, fmt.Sprintf("🚓 **Busted!** You got caught robbing **%s** and paid a **%s** fine.",
		victimName, FormatBalance(result.Amount)))
}

func (b *Bot) handleSetBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	target := options["user"].UserValue(s)
	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid target user")
		return
	}
	value := options["amount"].IntValue()

	if err := b.userService.SetBalance(context.Background(), actorID, targetID, value); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "Only the house manager can do that.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "That user has no account.")
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "Balance cannot be negative.")
		default:
			log.Errorf("Error setting balance: %v", err)
			b.respondWithError(s, i, "Failed to set balance")
		}
		return
	}

	b.respond(s, i, fmt.Sprintf("🔧 Set **%s**'s balance to **%s**.",
		GetDisplayName(s, i.GuildID, target.ID), FormatBalance(value)))
}

func (b *Bot) handleDeleteAccount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	target := options["user"].UserValue(s)
	targetID, err := strconv.ParseInt(target.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid target user")
		return
	}

	if err := b.userService.DeleteAccount(context.Background(), actorID, targetID); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "Only the house manager can do that.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "That user has no account.")
		default:
			log.Errorf("Error deleting account: %v", err)
			b.respondWithError(s, i, "Failed to delete account")
		}
		return
	}

	b.respond(s, i, fmt.Sprintf("🗑️ Deleted **%s**'s account.", GetDisplayName(s, i.GuildID, target.ID)))
}

func (b *Bot) handlePurge(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}
	if actorID != b.config.AdminUserID {
		b.respondWithError(s, i, "Only the house manager can do that.")
		return
	}

	count := 10
	if opt, ok := optionMap(i)["count"]; ok {
		count = int(opt.IntValue())
	}
	if count < 1 || count > 100 {
		b.respondWithError(s, i, "Count must be between 1 and 100.")
		return
	}

	messages, err := s.ChannelMessages(i.ChannelID, count, "", "", "")
	if err != nil {
		log.Errorf("Error fetching messages for purge: %v", err)
		b.respondWithError(s, i, "Failed to fetch messages")
		return
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		log.Errorf("Error bulk deleting messages: %v", err)
		b.respondWithError(s, i, "Failed to delete messages")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🧹 Deleted %d messages.", len(ids)),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to purge command: %v", err)
	}
}

// optionMap indexes the interaction's top-level options by name
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
