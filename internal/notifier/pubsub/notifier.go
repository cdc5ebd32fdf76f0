// Package pubsub implements a relay.Notifier backed by Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/JakeFAU/content-relay/internal/relay"
)

var _ relay.Notifier = (*Notifier)(nil)

// publisher publishes one message and waits for the server-assigned ID.
type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

type topicPublisher struct {
	topic *pubsub.Topic
}

func (p topicPublisher) Publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	id, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

// Notifier publishes payloads as JSON messages.
type Notifier struct {
	client    *pubsub.Client
	topic     *pubsub.Topic
	publisher publisher
	name      string
}

// New connects to projectID and publishes to topicID.
func New(ctx context.Context, projectID, topicID string) (*Notifier, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	return &Notifier{
		client:    client,
		topic:     topic,
		publisher: topicPublisher{topic: topic},
		name:      fmt.Sprintf("projects/%s/topics/%s", projectID, topicID),
	}, nil
}

func newWithPublisher(pub publisher, name string) *Notifier {
	return &Notifier{publisher: pub, name: name}
}

// Notify publishes the payload once. Any failure is reported as NotificationNetwork.
func (n *Notifier) Notify(ctx context.Context, payload relay.NotificationPayload) error {
	if n.publisher == nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.name,
			Cause:       errors.New("pubsub publisher is not configured"),
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.name,
			Cause:       fmt.Errorf("marshal payload: %w", err),
		}
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"content_type": "application/json",
			"source_url":   payload.SourceURL,
		},
	}
	if _, err := n.publisher.Publish(ctx, msg); err != nil {
		return &relay.NotificationError{
			Kind:        relay.NotificationNetwork,
			Destination: n.name,
			Cause:       err,
		}
	}
	return nil
}

// Close flushes pending publishes and releases the client.
func (n *Notifier) Close() error {
	if n.topic != nil {
		n.topic.Stop()
	}
	if n.client != nil {
		if err := n.client.Close(); err != nil {
			return fmt.Errorf("close pubsub client: %w", err)
		}
	}
	return nil
}
