package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/forumhub/apiserver/internal/logging"
)

// Channels events are published on.
const (
	ModerationChannel = "forum.moderation"
	MembershipChannel = "forum.membership"
)

// Publisher sends an event to a broker channel. *mq.MQ satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Archiver stores an object. *storage.Storage satisfies it.
type Archiver interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Event is the JSON payload of moderation and membership events.
type Event struct {
	Type      string    `json:"type"`
	Action    string    `json:"action,omitempty"`
	ReportID  string    `json:"reportId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

// publishEvent is best-effort: failures are logged and never surfaced.
func publishEvent(ctx context.Context, p Publisher, log logging.Logger, channel string, ev Event) {
	if p == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Warn(ctx, "encode event failed", "type", ev.Type, "err", err)
		return
	}
	if _, err := p.Publish(ctx, channel, data, map[string]string{"type": ev.Type}); err != nil {
		log.Warn(ctx, "publish event failed", "channel", channel, "type", ev.Type, "err", err)
	}
}
