package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-rentals-api/internal/domain"
)

// AlertRepo provides typed DynamoDB operations for the alerts table.
type AlertRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertRepo(client *dynamodb.Client, tableName string) *AlertRepo {
	return &AlertRepo{client: client, tableName: tableName}
}

func (r *AlertRepo) Put(ctx context.Context, a *domain.Alert) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AlertRepo) Get(ctx context.Context, alertID string) (*domain.Alert, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alert_id", alertID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("alert not found: %w", domain.ErrNotFound)
	}
	var a domain.Alert
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAll returns the complete alert snapshot. The sweep loads this once at
// the start of a run; the alert count is small (one per saved search).
func (r *AlertRepo) ListAll(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Alert
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		alerts = append(alerts, page...)
		if out.LastEvaluatedKey == nil {
			return alerts, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *AlertRepo) ListByUser(ctx context.Context, userID string) ([]domain.Alert, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var alerts []domain.Alert
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// UpdateLastSent records the notification timestamp on a single alert row.
// The condition keeps a concurrent delete from resurrecting the alert.
func (r *AlertRepo) UpdateLastSent(ctx context.Context, alertID string, sentAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldLastSentAt: sentAt.UTC().Format(time.RFC3339),
		"updated_at":    sentAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("alert_id", alertID),
		ConditionExpression:       aws.String("attribute_exists(alert_id)"),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("alert deleted during sweep: %w", domain.ErrNotFound)
	}
	return err
}

func (r *AlertRepo) Delete(ctx context.Context, alertID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("alert_id", alertID),
	})
	return err
}

// DeleteByUser removes every alert owned by the given user. Used by the
// account-deletion cascade.
func (r *AlertRepo) DeleteByUser(ctx context.Context, userID string) error {
	alerts, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, a := range alerts {
		if err := r.Delete(ctx, a.AlertID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
