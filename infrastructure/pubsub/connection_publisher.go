package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"social-connect/domain/model"
	"social-connect/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewClient connects to Google Cloud Pub/Sub for the given project.
func NewClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// ConnectionPublisher publishes connection events to one topic.
type ConnectionPublisher struct {
	client  *pubsub.Client
	topicID string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewConnectionPublisher(client *pubsub.Client, topicID string) *ConnectionPublisher {
	return &ConnectionPublisher{client: client, topicID: topicID}
}

// ensureTopic resolves the topic once, creating it when it does not exist.
func (p *ConnectionPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}
	topic := p.client.Topic(p.topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("Topic doesn't exist - creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicID); err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *ConnectionPublisher) Publish(ctx context.Context, evt model.ConnectionEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":     evt.Type,
			"platform": evt.Platform.String(),
		},
	}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server_id", serverID).WithField("type", evt.Type).Info("Connection event published")
	return nil
}

// Close flushes pending messages.
func (p *ConnectionPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
