package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/remodel-leadbot/internal/customers"
	"github.com/wolfman30/remodel-leadbot/internal/qualification"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestQualifiedPublisher_NotifyQualified(t *testing.T) {
	client := &fakeSQS{}
	pub := NewQualifiedPublisher(client, "https://sqs.local/leads", nil)

	profile := &customers.Profile{CustomerID: "elite", CompanyName: "Elite Remodeling", ContactEmail: "owner@elite.example"}
	fields := qualification.LeadFields{Name: "Jane Doe", Phone: "(202) 456-1111", Budget: 80000, TimelineMonths: 6, ZipCode: "90210", ProjectType: "kitchen", Email: "jane@example.com"}

	require.NoError(t, pub.NotifyQualified(context.Background(), profile, fields, "conv-1"))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	assert.Equal(t, "https://sqs.local/leads", aws.ToString(in.QueueUrl))
	assert.Equal(t, "leads.lead.qualified.v1", aws.ToString(in.MessageAttributes["event_type"].StringValue))

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &env))
	assert.Equal(t, "customer:elite", env.Aggregate)
	assert.Equal(t, "conv-1", env.CorrelationID)

	var evt LeadQualifiedV1
	require.NoError(t, env.Decode(&evt))
	assert.Equal(t, "+12024561111", evt.Phone)
	assert.Equal(t, "conv-1", evt.ConversationID)
	assert.Equal(t, 80000, evt.Budget)
	assert.False(t, evt.QualifiedAt.IsZero())
}

func TestQualifiedPublisher_Errors(t *testing.T) {
	boom := errors.New("queue missing")
	pub := NewQualifiedPublisher(&fakeSQS{err: boom}, "q", nil)

	err := pub.NotifyQualified(context.Background(), &customers.Profile{CustomerID: "c"}, qualification.LeadFields{}, "conv")
	assert.ErrorIs(t, err, boom)

	assert.Error(t, pub.NotifyQualified(context.Background(), nil, qualification.LeadFields{}, "conv"))
}

func TestNewQualifiedPublisherPanics(t *testing.T) {
	assert.Panics(t, func() { NewQualifiedPublisher(nil, "q", nil) })
	assert.Panics(t, func() { NewQualifiedPublisher(&fakeSQS{}, "", nil) })
}
