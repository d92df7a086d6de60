package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-rentals-api/internal/domain"
)

// LockRepo implements a lease over the sweep_locks table. A conditional put
// acquires the lease; the expires_at attribute doubles as a DynamoDB TTL so a
// crashed holder cannot wedge the lock forever.
type LockRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLockRepo(client *dynamodb.Client, tableName string) *LockRepo {
	return &LockRepo{client: client, tableName: tableName}
}

// Acquire takes the named lease for holder, valid for ttl. It succeeds when
// no lease exists or the existing one has expired; otherwise it returns
// ErrConflict and the caller must back off.
func (r *LockRepo) Acquire(ctx context.Context, lockID, holder string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"lock_id":    &types.AttributeValueMemberS{Value: lockID},
			"holder":     &types.AttributeValueMemberS{Value: holder},
			"expires_at": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(ttl).Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(lock_id) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("lease %s already held: %w", lockID, domain.ErrConflict)
	}
	return err
}

// Release drops the lease when still held by holder. Releasing a lease taken
// over by someone else is a no-op.
func (r *LockRepo) Release(ctx context.Context, lockID, holder string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("lock_id", lockID),
		ConditionExpression: aws.String("holder = :h"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h": &types.AttributeValueMemberS{Value: holder},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}
