package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"casino/events"
	"casino/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleLotteryStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	options := optionMap(i)
	var prize *int64
	if opt, ok := options["prize"]; ok {
		value := opt.IntValue()
		prize = &value
	}
	duration := 6 * time.Hour
	if opt, ok := options["hours"]; ok {
		duration = time.Duration(opt.IntValue()) * time.Hour
	}

	lottery, err := b.lotteryService.StartRound(context.Background(), actorID, prize, duration, i.ChannelID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "Only the house manager can start a lottery.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "A lottery is already running. End it first with `/lottoend`.")
		case errors.Is(err, models.ErrValidation):
			b.respondWithError(s, i, "The prize and duration must be positive.")
		default:
			log.Errorf("Error starting lottery: %v", err)
			b.respondWithError(s, i, "Failed to start the lottery")
		}
		return
	}

	prizeLine := fmt.Sprintf("The prize is **%s**!", FormatBalance(lottery.PrizeAmount()))
	if lottery.Prize == nil {
		prizeLine = "Every ticket grows the pot!"
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎟️ Lottery",
		Description: fmt.Sprintf("%s\n\nThe draw happens %s. One ticket per player.",
			prizeLine, FormatDiscordTimestamp(lottery.EndTime, "R")),
		Color: 0xFEE75C,
	}
	components := []discordgo.MessageComponent{
		&discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.Button{
					Label:    "Buy a ticket",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("lottery_join_%d", lottery.ID),
				},
			},
		},
	}
	b.respondWithEmbed(s, i, embed, components)
}

func (b *Bot) handleLotteryJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	customID := i.MessageComponentData().CustomID
	lotteryID, err := strconv.ParseInt(strings.TrimPrefix(customID, "lottery_join_"), 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid interaction")
		return
	}

	lottery, err := b.lotteryService.Enter(context.Background(), lotteryID, discordID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			b.respondWithError(s, i, "You need an account first (`/new`), and the round must still exist.")
		case errors.Is(err, models.ErrInvalidState):
			b.respondWithError(s, i, "That round is over.")
		case errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "You already hold a ticket for this round.")
		case errors.Is(err, models.ErrInsufficientFunds):
			b.respondWithError(s, i, "You cannot afford a ticket.")
		default:
			log.Errorf("Error entering lottery: %v", err)
			b.respondWithError(s, i, "Failed to buy a ticket")
		}
		return
	}

	content := fmt.Sprintf("🎟️ You're in! The draw happens %s.",
		FormatDiscordTimestamp(lottery.EndTime, "R"))
	if lottery.Prize == nil {
		content = fmt.Sprintf("🎟️ You're in! The pot is now **%s**. The draw happens %s.",
			FormatBalance(lottery.Pot), FormatDiscordTimestamp(lottery.EndTime, "R"))
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error responding to lottery join: %v", err)
	}
}

func (b *Bot) handleLotteryEnd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Invalid user ID")
		return
	}

	lottery, err := b.lotteryService.GetActive(context.Background())
	if err != nil {
		log.Errorf("Error looking up active lottery: %v", err)
		b.respondWithError(s, i, "Failed to look up the lottery")
		return
	}
	if lottery == nil {
		b.respondWithError(s, i, "No lottery is running.")
		return
	}

	result, err := b.lotteryService.EndRound(context.Background(), lottery.ID, actorID, true)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			b.respondWithError(s, i, "Only the house manager can end the lottery.")
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
			b.respondWithError(s, i, "That round was already resolved.")
		default:
			log.Errorf("Error ending lottery: %v", err)
			b.respondWithError(s, i, "Failed to end the lottery")
		}
		return
	}

	b.respond(s, i, b.formatLotteryResult(result.WinnerID, result.Prize, result.Entries))
}

// announceLotteryEnd posts sweep results to the channel the round was
// announced in; the channel rides on the event from the persisted
// round, so rounds started before a restart still report. Forced
// endings already got an interaction response.
func (b *Bot) announceLotteryEnd(event events.LotteryEndedEvent) {
	if event.Forced {
		return
	}
	if event.ChannelID == "" {
		log.WithField("lotteryID", event.LotteryID).Warn("Lottery ended with no announcement channel")
		return
	}

	_, err := b.session.ChannelMessageSend(event.ChannelID,
		b.formatLotteryResult(event.WinnerID, event.Prize, event.Entries))
	if err != nil {
		log.Errorf("Error announcing lottery result: %v", err)
	}
}

func (b *Bot) formatLotteryResult(winnerID *int64, prize int64, entries int) string {
	if winnerID == nil {
		return "🎟️ The lottery closed with no tickets sold. Nobody wins."
	}
	return fmt.Sprintf("🎉 **The lottery is over!** %s wins **%s** out of %d tickets!",
		Mention(*winnerID), FormatBalance(prize), entries)
}
