// Package sns publishes ledger events to an SNS topic. Each event is wrapped
// in an envelope carrying a ULID message id and published with the channel
// name as a message attribute so subscribers can filter without parsing the
// body.
package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/oklog/ulid/v2"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
)

// channelAttribute is the SNS message attribute carrying the channel name
const channelAttribute = "channel"

// PublishAPI is the subset of the SNS client the notifier uses
type PublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier publishes ledger events to a single SNS topic. Publish makes one
// attempt and returns the error; retry policy belongs to callers.
type Notifier struct {
	client   PublishAPI
	topicARN string
	logger   *slog.Logger
}

// NewNotifier creates a new Notifier for the given topic
func NewNotifier(client PublishAPI, topicARN string, logger *slog.Logger) *Notifier {
	return &Notifier{
		client:   client,
		topicARN: topicARN,
		logger:   logger,
	}
}

// envelope is the wire format of a published event
type envelope struct {
	MessageID   string    `json:"messageId"`
	Channel     string    `json:"channel"`
	PublishedAt time.Time `json:"publishedAt"`
	Payload     any       `json:"payload"`
}

// Publish sends one event to the topic on the named channel
func (n *Notifier) Publish(ctx context.Context, event any, channel string) error {
	body, err := json.Marshal(envelope{
		MessageID:   ulid.Make().String(),
		Channel:     channel,
		PublishedAt: time.Now().UTC(),
		Payload:     event,
	})
	if err != nil {
		return errors.NewInternalError("failed to marshal event", err)
	}

	result, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			channelAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(channel),
			},
		},
	})
	if err != nil {
		return errors.NewInternalError("failed to publish event", err)
	}

	n.logger.Debug("published event", "channel", channel, "snsMessageId", aws.ToString(result.MessageId))
	return nil
}
