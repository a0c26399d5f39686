package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/northwind/salesportal/internal/model"
)

type dynamoCredentialRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoCredentialRepository(client DynamoAPI, table string) CredentialRepository {
	return &dynamoCredentialRepository{client: client, table: table}
}

func (r *dynamoCredentialRepository) ByKey(ctx context.Context, key string) (*model.Credential, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            stringKey("key", key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrCredentialNotFound
	}

	cred := &model.Credential{}
	err = attributevalue.UnmarshalMap(out.Item, cred)
	if err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return cred, nil
}

func (r *dynamoCredentialRepository) Put(ctx context.Context, cred *model.Credential) error {
	item, err := attributevalue.MarshalMap(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put credential: %w", err)
	}
	return nil
}
