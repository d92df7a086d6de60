package sns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-rentals-api/internal/config"
)

// OpsNotifier publishes operational messages (sweep failure summaries) to an
// SNS topic watched by the on-call channel.
type OpsNotifier interface {
	Publish(ctx context.Context, subject, message string) error
}

type notifier struct {
	client   *sns.Client
	topicARN string
}

func NewNotifier(cfg *config.Config) (OpsNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &notifier{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: cfg.SweepOpsTopicARN}, nil
}

func (n *notifier) Publish(ctx context.Context, subject, message string) error {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	return err
}
