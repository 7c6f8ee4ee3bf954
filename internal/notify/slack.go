package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// Slack posts leveled messages to a monitoring channel. Posting is
// best-effort: failures are printed locally and swallowed.
type Slack struct {
	client  *slack.Client
	channel string
}

// NewSlack builds a notifier for the given bot token and channel name.
func NewSlack(token, channel string) *Slack {
	return &Slack{
		client:  slack.New(token),
		channel: channel,
	}
}

func (s *Slack) Info(message string)    { s.post(LevelInfo, message) }
func (s *Slack) Warning(message string) { s.post(LevelWarning, message) }
func (s *Slack) Severe(message string)  { s.post(LevelSevere, message) }

func (s *Slack) post(level Level, message string) {
	formatted := fmt.Sprintf("[%s] %s", level, message)
	log.Print(formatted)

	_, _, err := s.client.PostMessage(s.channel, slack.MsgOptionText(formatted, false))
	if err != nil {
		log.Printf("failed to send slack message: %v", err)
	}
}
