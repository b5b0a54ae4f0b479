package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
	"github.com/wolfman30/remodel-leadbot/pkg/logging"
	"github.com/wolfman30/remodel-leadbot/pkg/phone"
)

// SQSAPI is the subset of the SQS client the publisher uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QualifiedPublisher emits LeadQualifiedV1 envelopes to an SQS queue so
// CRMs and other consumers can pick up new leads.
type QualifiedPublisher struct {
	client   SQSAPI
	queueURL string
	logger   *logging.Logger
}

// NewQualifiedPublisher creates a publisher for queueURL.
func NewQualifiedPublisher(client SQSAPI, queueURL string, logger *logging.Logger) *QualifiedPublisher {
	if client == nil {
		panic("events: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("events: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QualifiedPublisher{client: client, queueURL: queueURL, logger: logger}
}

// NotifyQualified publishes the lead. The conversation id is used as the
// correlation id.
func (p *QualifiedPublisher) NotifyQualified(ctx context.Context, profile *customers.Profile, fields qualification.LeadFields, conversationID string) error {
	if profile == nil {
		return fmt.Errorf("events: customer profile required")
	}
	evt := LeadQualifiedV1{
		CustomerID:     profile.CustomerID,
		CompanyName:    profile.CompanyName,
		ContactEmail:   profile.ContactEmail,
		ConversationID: conversationID,
		Name:           fields.Name,
		Email:          fields.Email,
		Phone:          phone.NormalizeE164(fields.Phone),
		ProjectType:    fields.ProjectType,
		Budget:         fields.Budget,
		TimelineMonths: fields.TimelineMonths,
		ZipCode:        fields.ZipCode,
		QualifiedAt:    nowFunc().UTC(),
	}
	env, err := NewEnvelope("customer:"+profile.CustomerID, conversationID, evt)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events: marshal envelope: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(env.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("events: failed to send SQS message: %w", err)
	}
	p.logger.Info("lead qualified event published", "event_id", env.EventID, "conversation_id", conversationID, "message_id", aws.ToString(out.MessageId))
	return nil
}
