package slack

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/uscdining/dishwatch/log"
)

// Poster is the part of the Slack API the notifier uses.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts run reports to a single channel.
type Notifier struct {
	log     zerolog.Logger
	client  Poster
	channel string
}

func NewNotifier(botToken, channel string) *Notifier {
	api := slack.New(
		botToken,
		// slack.OptionDebug(true),
	)

	return newNotifier(api, channel)
}

func newNotifier(client Poster, channel string) *Notifier {
	return &Notifier{
		log:     log.NewLogger("slack"),
		client:  client,
		channel: channel,
	}
}

// Notify posts text as a message to the channel.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	channel, ts, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return errors.Wrapf(err, "failed to post to %s", n.channel)
	}

	n.log.Info().Str("channel", channel).Str("ts", ts).Msg("Posted run summary")
	return nil
}
