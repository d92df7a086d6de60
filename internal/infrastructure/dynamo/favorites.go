package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-rentals-api/internal/domain"
)

// FavoriteRepo provides typed DynamoDB operations for the favorites table.
// The favorite_id is derived from (user_id, listing_id), which makes Put
// naturally idempotent: favoriting the same listing twice overwrites one row.
type FavoriteRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFavoriteRepo(client *dynamodb.Client, tableName string) *FavoriteRepo {
	return &FavoriteRepo{client: client, tableName: tableName}
}

// FavoriteID builds the deterministic primary key for (user, listing).
func FavoriteID(userID string, listingID int) string {
	return fmt.Sprintf("%s#%d", userID, listingID)
}

func (r *FavoriteRepo) Put(ctx context.Context, f *domain.Favorite) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
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
	var favs []domain.Favorite
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}

func (r *FavoriteRepo) Delete(ctx context.Context, userID string, listingID int) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("favorite_id", FavoriteID(userID, listingID)),
	})
	return err
}

// DeleteByUser removes every favorite owned by the given user.
func (r *FavoriteRepo) DeleteByUser(ctx context.Context, userID string) error {
	favs, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, f := range favs {
		if err := r.Delete(ctx, f.UserID, f.ListingID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TopListings scans the table and ranks listings by favorite count,
// descending, ties broken by listing id ascending.
func (r *FavoriteRepo) TopListings(ctx context.Context, limit int) ([]domain.FavoriteCount, error) {
	counts := map[int]int{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Favorite
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, f := range page {
			counts[f.ListingID]++
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	ranked := make([]domain.FavoriteCount, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, domain.FavoriteCount{ListingID: id, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ListingID < ranked[j].ListingID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// CountByUser returns the number of favorites per user id across the table.
func (r *FavoriteRepo) CountByUser(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Favorite
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, f := range page {
			counts[f.UserID]++
		}
		if out.LastEvaluatedKey == nil {
			return counts, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
