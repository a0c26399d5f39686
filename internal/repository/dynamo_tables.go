package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoTables names the three tables the portal uses.
type DynamoTables struct {
	Content       string
	CategoryIndex string
	Credentials   string
	Revocations   string
}

// TableAdmin is the subset of the DynamoDB client needed to provision tables.
type TableAdmin interface {
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, in *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

// CreateTables provisions the portal tables on demand billing. Tables that
// already exist are left untouched.
func CreateTables(ctx context.Context, client TableAdmin, tables DynamoTables) error {
	if tables.CategoryIndex == "" {
		tables.CategoryIndex = DefaultCategoryIndex
	}

	specs := []*dynamodb.CreateTableInput{
		{
			TableName: aws.String(tables.Content),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("category"), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String("createdAt"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(tables.CategoryIndex),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("category"), KeyType: types.KeyTypeHash},
						{AttributeName: aws.String("createdAt"), KeyType: types.KeyTypeRange},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
				},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Credentials),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("key"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("key"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(tables.Revocations),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("tokenId"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("tokenId"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	}

	for _, spec := range specs {
		_, err := client.CreateTable(ctx, spec)
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			slog.Info("table already exists", "table", *spec.TableName)
			continue
		}
		if err != nil {
			return fmt.Errorf("create table %s: %w", *spec.TableName, err)
		}
		slog.Info("table created", "table", *spec.TableName)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tables.Revocations)}, 2*time.Minute)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", tables.Revocations, err)
	}

	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tables.Revocations),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String("expiresAt"),
			Enabled:       aws.Bool(true),
		},
	})
	var validation interface{ ErrorCode() string }
	if errors.As(err, &validation) && validation.ErrorCode() == "ValidationException" {
		// TTL was already enabled on a previous run.
		return nil
	}
	if err != nil {
		return fmt.Errorf("enable ttl on %s: %w", tables.Revocations, err)
	}
	return nil
}
