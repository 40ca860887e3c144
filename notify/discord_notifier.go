package notify

import (
	"context"
	"fmt"

	"pledgebook/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// EmbedSender is the part of a Discord session the notifier needs
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts pledge activity to an admin channel
type DiscordNotifier struct {
	sender    EmbedSender
	channelID string
}

// NewDiscordNotifier creates a notifier backed by a bot session. Only the
// REST API is used, so the gateway is never opened.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return NewDiscordNotifierWithSender(session, channelID), nil
}

// NewDiscordNotifierWithSender creates a notifier over an existing sender
func NewDiscordNotifierWithSender(sender EmbedSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		sender:    sender,
		channelID: channelID,
	}
}

// Notify posts the embed for event. Events without an embed are ignored.
func (n *DiscordNotifier) Notify(ctx context.Context, event events.Event) error {
	var embed *discordgo.MessageEmbed
	switch e := event.(type) {
	case events.PledgeSubmittedEvent:
		embed = CreatePledgeSubmittedEmbed(e)
	case events.PledgeAcceptedEvent:
		embed = CreatePledgeAcceptedEmbed(e)
	default:
		return nil
	}

	if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send %s notification: %w", event.Type(), err)
	}
	return nil
}

// SubscribeTo registers the notifier for pledge events on bus
func (n *DiscordNotifier) SubscribeTo(bus *events.Bus) {
	handler := func(ctx context.Context, event events.Event) {
		if err := n.Notify(ctx, event); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"eventType": event.Type(),
				"channelID": n.channelID,
			}).Error("Failed to post Discord notification")
		}
	}
	bus.Subscribe(events.EventTypePledgeSubmitted, handler)
	bus.Subscribe(events.EventTypePledgeAccepted, handler)
}
