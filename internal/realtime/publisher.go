// Package realtime pushes events to per-user live channels.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// EventNewNotification is published when a notification is created.
const EventNewNotification = "new-notification"

type Publisher interface {
	Publish(ctx context.Context, channelKey, event string, payload any) error
	Close() error
}

// Message is the envelope written to a channel.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		return nil, errors.Wrap(err, "encode realtime message")
	}
	return data, nil
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
