package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// revokedToken is one denylist row. ExpiresAt doubles as the table's TTL
// attribute, so DynamoDB drops rows on its own once the token is dead.
type revokedToken struct {
	TokenID   string `dynamodbav:"tokenId"`
	ExpiresAt int64  `dynamodbav:"expiresAt"` // TTL (Unix timestamp)
}

type dynamoRevocationRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoRevocationRepository(client DynamoAPI, table string) RevocationRepository {
	return &dynamoRevocationRepository{client: client, table: table}
}

func (r *dynamoRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	item, err := attributevalue.MarshalMap(revokedToken{TokenID: tokenID, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return fmt.Errorf("encode revocation: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put revocation: %w", err)
	}
	return nil
}

func (r *dynamoRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       stringKey("tokenId", tokenID),
	})
	if err != nil {
		return false, fmt.Errorf("get revocation: %w", err)
	}
	if len(out.Item) == 0 {
		return false, nil
	}

	var row revokedToken
	err = attributevalue.UnmarshalMap(out.Item, &row)
	if err != nil {
		return false, fmt.Errorf("decode revocation: %w", err)
	}
	// TTL deletion lags by up to a couple of days; honour the timestamp itself.
	return row.ExpiresAt > time.Now().Unix(), nil
}

// PurgeExpired is a no-op: the table's TTL setting removes expired rows.
func (r *dynamoRevocationRepository) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
