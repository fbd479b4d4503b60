package servicebus

import (
	"context"
	"encoding/json"

	"social-connect/domain/model"
	"social-connect/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewClient connects to a Service Bus namespace, e.g. myns.servicebus.windows.net,
// with the default Azure credential chain.
func NewClient(namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// ConnectionPublisher sends connection events to a queue.
type ConnectionPublisher struct {
	client *azservicebus.Client
	queue  string
}

func NewConnectionPublisher(client *azservicebus.Client, queue string) *ConnectionPublisher {
	return &ConnectionPublisher{client: client, queue: queue}
}

func newMessage(evt model.ConnectionEvent) (*azservicebus.Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	subject := evt.Type
	return &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"platform": evt.Platform.String(),
			"user_id":  evt.UserID,
		},
	}, nil
}

func (p *ConnectionPublisher) Publish(ctx context.Context, evt model.ConnectionEvent) error {
	msg, err := newMessage(evt)
	if err != nil {
		return err
	}
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
