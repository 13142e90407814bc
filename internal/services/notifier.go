package services

import (
	"context"
	"log/slog"
	"time"

	pubnub "github.com/pubnub/go"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ContentChange is broadcast whenever an admin write lands, so open pages
// can refresh.
type ContentChange struct {
	Table  string    `json:"table"`
	ID     string    `json:"id"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

type ContentNotifier interface {
	ContentChanged(ctx context.Context, change ContentChange)
}

type Notifier struct {
	pubnub  *pubnub.PubNub
	channel string
}

func NewNotifier(pn *pubnub.PubNub, channel string) *Notifier {
	return &Notifier{pubnub: pn, channel: channel}
}

// ContentChanged publishes change. Publishing is best effort: failures are
// logged and never reach the admin.
func (n *Notifier) ContentChanged(_ context.Context, change ContentChange) {
	if n == nil || n.pubnub == nil {
		return
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	_, _, err := n.pubnub.Publish().
		Channel(n.channel).
		Message(change).
		Execute()
	if err != nil {
		slog.Warn("Failed to publish content change", "error", err, "table", change.Table, "id", change.ID)
	}
}

type nopNotifier struct{}

func (nopNotifier) ContentChanged(context.Context, ContentChange) {}

func notifierOrNop(n ContentNotifier) ContentNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
