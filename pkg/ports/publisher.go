package ports

import "context"

// Publisher broadcasts turn results. Topics are the domain.Topic* constants.
type Publisher interface {
	Publish(ctx context.Context, userID, topic string, payload any) error
}
