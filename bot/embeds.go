package bot

import (
	"fmt"
	"strings"

	"casino/models"

	"github.com/bwmarrin/discordgo"
)

func formatHand(hand []models.Card) string {
	parts := make([]string, len(hand))
	for i, card := range hand {
		parts[i] = "`" + card.String() + "`"
	}
	return strings.Join(parts, " ")
}

func (b *Bot) duelEmbed(s *discordgo.Session, guildID string, session *models.BlackjackSession) *discordgo.MessageEmbed {
	name1 := GetDisplayNameInt64(s, guildID, session.Player1ID)
	name2 := GetDisplayNameInt64(s, guildID, session.Player2ID)

	return &discordgo.MessageEmbed{
		Title: "🃏 Blackjack Duel",
		Description: fmt.Sprintf("Playing for **%s**. %s to act.",
			FormatBalance(session.Wager), Mention(session.Turn)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("%s — %d", name1, session.Scores[session.Player1ID]),
				Value: formatHand(session.Hands[session.Player1ID]),
			},
			{
				Name:  fmt.Sprintf("%s — %d", name2, session.Scores[session.Player2ID]),
				Value: formatHand(session.Hands[session.Player2ID]),
			},
		},
		Color: 0x5865F2,
	}
}

func (b *Bot) duelResultEmbed(s *discordgo.Session, guildID string, session *models.BlackjackSession, result *models.DuelResult) *discordgo.MessageEmbed {
	embed := b.duelEmbed(s, guildID, session)
	embed.Color = 0x57F287

	if result.Draw {
		embed.Description = fmt.Sprintf("🤝 **Push!** Both hands tied. The **%s** wager returns home.",
			FormatBalance(result.Wager))
		return embed
	}

	embed.Description = fmt.Sprintf("🏆 **%s** wins **%s** from **%s**!",
		GetDisplayNameInt64(s, guildID, result.WinnerID),
		FormatBalance(result.Wager),
		GetDisplayNameInt64(s, guildID, result.LoserID))
	return embed
}
