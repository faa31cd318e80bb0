package notify

import (
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// SlackNotifier posts alerts to a fixed channel. Errors are logged and
// dropped; the kiosk keeps working when Slack is unreachable.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	log     zerolog.Logger
}

func NewSlackNotifier(botToken, channel string, log zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
		log:     log,
	}
}

func (n *SlackNotifier) Emit(title, body, tag string) {
	_, _, err := n.client.PostMessage(
		n.channel,
		slack.MsgOptionText(title+"\n"+body, false),
	)
	if err != nil {
		n.log.Warn().Err(err).Str("tag", tag).Msg("failed to post slack alert")
	}
}
