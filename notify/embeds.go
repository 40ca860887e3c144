package notify

import (
	"fmt"

	"pledgebook/events"
	"pledgebook/models"

	"github.com/bwmarrin/discordgo"
)

// Discord color constants
const (
	ColorSuccess = 0x57F287 // Green
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
)

// FormatPi renders an amount of Pi with two decimals
func FormatPi(amount float64) string {
	return fmt.Sprintf("%.2f π", amount)
}

// FormatPHP renders a peso amount with two decimals
func FormatPHP(amount float64) string {
	return fmt.Sprintf("₱%.2f", amount)
}

func kindLabel(kind models.PledgeKind) string {
	if kind == models.PledgeKindRequested {
		return "Request"
	}
	return "Donation"
}

// CreatePledgeSubmittedEmbed announces a pledge waiting for acceptance
func CreatePledgeSubmittedEmbed(e events.PledgeSubmittedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New %s pending - %s", kindLabel(e.Kind), e.Code),
		Color:       ColorWarning,
		Description: fmt.Sprintf("Submitted by **%s** <t:%d:f>", e.Username, e.CreatedAt.Unix()),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Amount",
				Value:  FormatPi(e.AmountPi),
				Inline: true,
			},
			{
				Name:   "Value at submission",
				Value:  FormatPHP(e.AmountPHP),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Accept with the admin API once the transfer is verified",
		},
	}
}

// CreatePledgeAcceptedEmbed confirms an accepted pledge
func CreatePledgeAcceptedEmbed(e events.PledgeAcceptedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s accepted - %s", kindLabel(e.Kind), e.Code),
		Color:       ColorSuccess,
		Description: fmt.Sprintf("**%s** <t:%d:f>", e.Username, e.AcceptedAt.Unix()),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Amount",
				Value:  FormatPi(e.AmountPi),
				Inline: true,
			},
		},
	}
}
