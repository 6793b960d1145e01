package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord posts to one channel through the bot REST API. No gateway
// connection is opened.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord creates a bot session for token that posts to channelID.
func NewDiscord(token, channelID string) (*Discord, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: dg, channelID: channelID}, nil
}

// Name implements Sink.
func (d *Discord) Name() string { return "discord" }

// Send implements Sink.
func (d *Discord) Send(ctx context.Context, msg Message) error {
	_, err := d.session.ChannelMessageSendComplex(d.channelID, &discordgo.MessageSend{
		Content:         msg.Render(DiscordDialect),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	return err
}
