package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "new",
			Description: "Open a casino account with the starting balance",
		},
		{
			Name:        "bal",
			Description: "Check your current balance",
		},
		{
			Name:        "dep",
			Description: "Transfer money to another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to transfer to",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to transfer",
					Required:    true,
				},
			},
		},
		{
			Name:        "lb",
			Description: "Show the richest players",
		},
		{
			Name:        "challenge",
			Description: "Challenge another player to a blackjack duel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to challenge",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "wager",
					Description: "Amount to duel for",
					Required:    true,
				},
			},
		},
		{
			Name:        "roulette",
			Description: "Open a roulette table",
		},
		{
			Name:        "join",
			Description: "Join an open roulette table",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "table",
					Description: "Table to join",
					Required:    true,
				},
			},
		},
		{
			Name:        "start",
			Description: "Start the roulette round at your table",
		},
		{
			Name:        "choose",
			Description: "Pick your roulette number",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "number",
					Description: "Pocket to bet on (1-36)",
					Required:    true,
				},
			},
		},
		{
			Name:        "bet",
			Description: "Place your roulette stake",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to stake",
					Required:    true,
				},
			},
		},
		{
			Name:        "rob",
			Description: "Attempt to rob another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to rob",
					Required:    true,
				},
			},
		},
		{
			Name:        "lotto",
			Description: "Start a lottery round (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "prize",
					Description: "Fixed prize amount (omit for pot mode)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "hours",
					Description: "Round length in hours (default 6)",
					Required:    false,
				},
			},
		},
		{
			Name:        "lottoend",
			Description: "End the running lottery immediately (admin only)",
		},
		{
			Name:        "setbal",
			Description: "Set a player's balance (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to adjust",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "New balance",
					Required:    true,
				},
			},
		},
		{
			Name:        "delacc",
			Description: "Delete a player's account (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User whose account to delete",
					Required:    true,
				},
			},
		},
		{
			Name:        "purge",
			Description: "Delete recent messages in this channel (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of messages to delete (default 10)",
					Required:    false,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
