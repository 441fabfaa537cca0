package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const embedColor = 0x2eb67d

// DiscordSink delivers update batches to a Discord channel as
// message embeds.
type DiscordSink struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordSink authenticates against Discord with the given bot
// token and verifies the credential with a self-lookup, so a broken
// token fails at startup rather than on the first delivery.
func NewDiscordSink(token, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "discord session creation failed")
	}

	_, err = session.User("@me")
	if err != nil {
		return nil, errors.Wrap(err, "discord authentication failed")
	}

	return &DiscordSink{
		session:   session,
		channelID: channelID,
	}, nil
}

// Send delivers one batch as a single message. The batch must not
// exceed MaxBatchSize.
func (s *DiscordSink) Send(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}
	if len(updates) > MaxBatchSize {
		return errors.Errorf("batch of %d updates exceeds the limit of %d", len(updates), MaxBatchSize)
	}

	_, err := s.session.ChannelMessageSendComplex(s.channelID, &discordgo.MessageSend{
		Embeds: buildEmbeds(updates),
	}, discordgo.WithContext(ctx))

	return errors.Wrap(err, "message delivery failed")
}

func buildEmbeds(updates []Update) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(updates))
	for _, u := range updates {
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Image update available: %s", u.Image),
			Description: fmt.Sprintf("A newer compatible tag of %s has been published.", u.Image),
			URL:         u.URL,
			Color:       embedColor,
			Timestamp:   u.ObservedAt.Format("2006-01-02T15:04:05Z07:00"),
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "Current tag",
					Value:  u.RunningTag,
					Inline: true,
				},
				{
					Name:   "Latest tag",
					Value:  u.LatestTag,
					Inline: true,
				},
			},
		})
	}

	return embeds
}
