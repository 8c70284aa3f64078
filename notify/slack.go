package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	poller "nba-game-poller"
)

// FinalMessage renders the announcement for a finished game.
func FinalMessage(rec poller.GameRecord) string {
	return fmt.Sprintf("Final: %s %d - %s %d", rec.AwayTeam, rec.AwayScore, rec.HomeTeam, rec.HomeScore)
}

// SlackNotifier posts final scores to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

func (n *SlackNotifier) NotifyFinal(ctx context.Context, rec poller.GameRecord) error {
	msg := &slack.WebhookMessage{Text: FinalMessage(rec)}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return fmt.Errorf("posting final for %s: %w", rec.ID, err)
	}
	return nil
}

// Nop drops notifications.
type Nop struct{}

func (Nop) NotifyFinal(context.Context, poller.GameRecord) error { return nil }

// New returns a Slack notifier when a webhook is configured, otherwise Nop.
func New(webhookURL string) poller.FinalNotifier {
	if webhookURL == "" {
		return Nop{}
	}
	return NewSlackNotifier(webhookURL)
}
