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

func (b *Bot) handleRouletteCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	initiatorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	table, err := b.rouletteService.CreateTable(context.Background(), initiatorID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "You are already in a game. Finish it first.")
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "You need an account first (`/new`).")
		default:
			log.Errorf("Error creating roulette table: %v", err)
			b.respondWithError(s, i, "Failed to open a table")
		}
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎡 Roulette",
		Description: fmt.Sprintf("**%s** opened table `%s`!\n\nTake a seat with `/join table:%s`. "+
			"The opener spins things up with `/start` once at least two players are seated.",
			GetDisplayName(s, i.GuildID, i.Member.User.ID), table.TableID, table.TableID),
		Color: 0xED4245,
	}
	b.respondWithEmbed(s, i, embed, nil)
}

func (b *Bot) handleRouletteJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	playerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}
	tableID := optionMap(i)["table"].StringValue()

	if err := b.rouletteService.Join(context.Background(), tableID, playerID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "No such table. Open one with `/roulette`.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "That round already started. Wait for the next one.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "You are already in a game. Finish it first.")
		default:
			log.Errorf("Error joining roulette table: %v", err)
			b.respondWithError(s, i, "Failed to join the table")
		}
		return
	}

	b.respond(s, i, fmt.Sprintf("🪑 **%s** sat down at table `%s`.",
		GetDisplayName(s, i.GuildID, i.Member.User.ID), tableID))
}

func (b *Bot) handleRouletteStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	playerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	table, ok := b.rouletteService.TableFor(playerID)
	if !ok {
		b.respondWithError(s, i, "You are not seated at a table. Open one with `/roulette`.")
		return
	}

	if err := b.rouletteService.Start(context.Background(), table.TableID, playerID); err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "Only the player who opened the table can start it.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "The round needs at least two seated players and must not have started yet.")
		default:
			log.Errorf("Error starting roulette round: %v", err)
			b.respondWithError(s, i, "Failed to start the round")
		}
		return
	}

	b.respond(s, i, "🎲 **Bets are open!** Pick your number with `/choose` (1-36), then stake with `/bet`. "+
		"The wheel spins once every bet is in.")
}

func (b *Bot) handleRouletteChoose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	playerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}
	pocket := int(optionMap(i)["number"].IntValue())

	table, ok := b.rouletteService.TableFor(playerID)
	if !ok {
		b.respondWithError(s, i, "You are not seated at a table.")
		return
	}

	if err := b.rouletteService.SetChoice(context.Background(), table.TableID, playerID, pocket); err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "Pick a pocket between 1 and 36.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "The round isn't collecting picks right now, or your bet already locked your pick.")
		default:
			log.Errorf("Error recording roulette choice: %v", err)
			b.respondWithError(s, i, "Failed to record your pick")
		}
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("🎯 You picked **%d %s**. You can change it until your bet lands.",
				pocket, models.PocketColor(pocket)),
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to choose command: %v", err)
	}
}

func (b *Bot) handleRouletteBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	playerID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}
	amount := optionMap(i)["amount"].IntValue()

	table, ok := b.rouletteService.TableFor(playerID)
	if !ok {
		b.respondWithError(s, i, "You are not seated at a table.")
		return
	}

	result, err := b.rouletteService.SetBet(context.Background(), table.TableID, playerID, amount)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "Your stake must be positive.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "Pick your number with `/choose` before betting, and only while the round is open.")
		case errors.Is(err, models.ErrInsufficientFunds):
			b.respondWithError(s, i, "You cannot cover that stake.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "Your bet is already locked in.")
		default:
			log.Errorf("Error placing roulette bet: %v", err)
			b.respondWithError(s, i, "Failed to place your bet")
		}
		return
	}

	if result == nil {
		b.respond(s, i, fmt.Sprintf("💵 **%s** staked **%s**. Waiting for the rest of the table...",
			GetDisplayName(s, i.GuildID, i.Member.User.ID), FormatBalance(amount)))
		return
	}

	b.respondWithEmbed(s, i, b.rouletteResultEmbed(s, i.GuildID, result), nil)
}

func (b *Bot) rouletteResultEmbed(s *discordgo.Session, guildID string, result *models.RouletteResult) *discordgo.MessageEmbed {
	var sb strings.Builder
	for playerID, bet := range result.Bets {
		name := GetDisplayNameInt64(s, guildID, playerID)
		if payout, won := result.Payouts[playerID]; won {
			sb.WriteString(fmt.Sprintf("🎉 **%s** staked %s and won **%s**!\n",
				name, FormatBalance(bet), FormatBalance(payout)))
		} else {
			sb.WriteString(fmt.Sprintf("😔 **%s** lost their %s stake.\n",
				name, FormatBalance(bet)))
		}
	}

	colorEmoji := "🔴"
	if result.Color == "black" {
		colorEmoji = "⚫"
	}

	return &discordgo.MessageEmbed{
		Title: "🎡 The wheel has spoken",
		Description: fmt.Sprintf("The ball landed on %s **%d %s**!\n\n%s",
			colorEmoji, result.WinningNum, result.Color, sb.String()),
		Color: 0xED4245,
	}
}
