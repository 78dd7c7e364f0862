package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultTopicPrefix namespaces published channels.
const DefaultTopicPrefix = "diagraph:"

// Publisher implements ports.Publisher with Redis PUBLISH.
// Each payload is sent as JSON on <prefix><topic>:<user>.
type Publisher struct {
	client *backend.Client
	prefix string
}

// NewPublisher creates a publisher. An empty prefix selects DefaultTopicPrefix.
func NewPublisher(client *backend.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Publisher{client: client, prefix: prefix}
}

// Channel returns the channel name for a topic and user.
func (p *Publisher) Channel(topic, userID string) string {
	return p.prefix + topic + ":" + userID
}

// Publish sends payload to the user's channel for topic.
func (p *Publisher) Publish(ctx context.Context, userID, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	if err := p.client.Publish(ctx, p.Channel(topic, userID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}
