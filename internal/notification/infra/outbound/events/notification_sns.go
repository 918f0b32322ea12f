package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedEvents "github.com/davicafu/hexasalon/shared/events"
)

var ErrMissingTopicARN = errors.New("sns: topic arn is required")

// SNSPublishAPI es el subconjunto de *sns.Client que usamos.
type SNSPublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotificationPublisher reenvía notification.created a un topic SNS. Los atributos
// recipient_type y notification_type permiten filtrar suscripciones del lado de AWS.
type SNSNotificationPublisher struct {
	client   SNSPublishAPI
	topicARN string
}

var _ domain.NotificationPublisher = (*SNSNotificationPublisher)(nil)

func NewSNSNotificationPublisher(client SNSPublishAPI, topicARN string) (*SNSNotificationPublisher, error) {
	if topicARN == "" {
		return nil, ErrMissingTopicARN
	}
	return &SNSNotificationPublisher{client: client, topicARN: topicARN}, nil
}

// NewSNSClient arma el cliente con la cadena de credenciales por defecto de AWS.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(awsCfg), nil
}

func (p *SNSNotificationPublisher) PublishCreated(ctx context.Context, n *domain.Notification) error {
	evt, err := sharedEvents.NewIntegrationEvent(domain.NotificationCreated, toNotificationCreated(n))
	if err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(n.Title),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"recipient_type":    stringAttribute(string(n.RecipientType)),
			"notification_type": stringAttribute(string(n.Type)),
		},
	})
	return err
}

func stringAttribute(v string) snstypes.MessageAttributeValue {
	return snstypes.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}
