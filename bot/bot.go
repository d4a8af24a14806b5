package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"casino/events"
	"casino/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token       string
	GuildID     string
	AdminUserID int64
}

type Bot struct {
	config           Config
	session          *discordgo.Session
	userService      service.UserService
	challengeService service.ChallengeService
	blackjackService service.BlackjackService
	rouletteService  service.RouletteService
	lotteryService   service.LotteryService
	robberyService   service.RobberyService
	eventBus         *events.Bus
}

func New(config Config, userService service.UserService, challengeService service.ChallengeService,
	blackjackService service.BlackjackService, rouletteService service.RouletteService,
	lotteryService service.LotteryService, robberyService service.RobberyService,
	eventBus *events.Bus) (*Bot, error) {

	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged

	bot := &Bot{
		config:           config,
		session:          dg,
		userService:      userService,
		challengeService: challengeService,
		blackjackService: blackjackService,
		rouletteService:  rouletteService,
		lotteryService:   lotteryService,
		robberyService:   robberyService,
		eventBus:         eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponentInteractions)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce rounds the background sweep resolved
	eventBus.Subscribe(events.EventTypeLotteryEnded, func(ctx context.Context, event events.Event) {
		if ended, ok := event.(events.LotteryEndedEvent); ok {
			bot.announceLotteryEnd(ended)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "new":
		b.handleNewAccount(s, i)
	case "bal":
		b.handleBalance(s, i)
	case "dep":
		b.handleDeposit(s, i)
	case "lb":
		b.handleLeaderboard(s, i)
	case "challenge":
		b.handleChallenge(s, i)
	case "roulette":
		b.handleRouletteCreate(s, i)
	case "join":
		b.handleRouletteJoin(s, i)
	case "start":
		b.handleRouletteStart(s, i)
	case "choose":
		b.handleRouletteChoose(s, i)
	case "bet":
		b.handleRouletteBet(s, i)
	case "rob":
		b.handleRob(s, i)
	case "lotto":
		b.handleLotteryStart(s, i)
	case "lottoend":
		b.handleLotteryEnd(s, i)
	case "setbal":
		b.handleSetBalance(s, i)
	case "delacc":
		b.handleDeleteAccount(s, i)
	case "purge":
		b.handlePurge(s, i)
	}
}

func (b *Bot) handleComponentInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "challenge_"):
		b.handleChallengeInteraction(s, i)
	case strings.HasPrefix(customID, "blackjack_"):
		b.handleBlackjackInteraction(s, i)
	case strings.HasPrefix(customID, "lottery_join_"):
		b.handleLotteryJoin(s, i)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error sending response: %v", err)
	}
}

func (b *Bot) respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if len(components) > 0 {
		data.Components = components
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Errorf("Error sending embed response: %v", err)
	}
}
