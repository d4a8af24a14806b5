package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"casino/bot"
	"casino/config"
	"casino/database"
	"casino/events"
	"casino/repository"
	"casino/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting casino bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Shared game state and randomness
	registry := service.NewSessionRegistry()
	cooldowns := service.NewCooldownTracker()
	rng := service.NewRand()
	isPrivileged := func(discordID int64) bool {
		return discordID == cfg.AdminUserID
	}

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance, isPrivileged)
	blackjackService := service.NewBlackjackService(uowFactory, registry, rng)
	challengeService := service.NewChallengeService(uowFactory, registry, blackjackService)
	rouletteService := service.NewRouletteService(uowFactory, registry, rng)
	lotteryService := service.NewLotteryService(uowFactory, rng, cfg.LotteryEntryFee, isPrivileged)
	robberyService := service.NewRobberyService(uowFactory, cooldowns, rng, cfg.RobCooldown, cfg.RobSuccessRate, cfg.RobFine)
	log.Println("Services initialized successfully")

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:       cfg.DiscordToken,
		GuildID:     cfg.DiscordGuildID,
		AdminUserID: cfg.AdminUserID,
	}
	discordBot, err := bot.New(botConfig, userService, challengeService, blackjackService,
		rouletteService, lotteryService, robberyService, eventBus)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Resolve expired lottery rounds in the background
	stopSweep := service.StartLotterySweep(ctx, lotteryService, cfg.LotterySweepInterval)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")
	stopSweep()

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
