package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/northwind/salesportal/internal/model"
)

// DefaultCategoryIndex is the GSI keyed by category with createdAt as sort key.
const DefaultCategoryIndex = "category-createdAt-index"

type dynamoContentRepository struct {
	client        DynamoAPI
	table         string
	categoryIndex string
}

func NewDynamoContentRepository(client DynamoAPI, table, categoryIndex string) ContentRepository {
	if categoryIndex == "" {
		categoryIndex = DefaultCategoryIndex
	}
	return &dynamoContentRepository{client: client, table: table, categoryIndex: categoryIndex}
}

func (r *dynamoContentRepository) Create(ctx context.Context, c *model.Content) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.table),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if _, failed := conditionFailed(err); failed {
		return ErrContentExists
	}
	if err != nil {
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

func (r *dynamoContentRepository) ByID(ctx context.Context, id string) (*model.Content, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            stringKey("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrContentNotFound
	}
	return decodeContent(out.Item)
}

func (r *dynamoContentRepository) List(ctx context.Context, category string, limit int) ([]*model.Content, error) {
	if category != "" {
		return r.queryCategory(ctx, category, limit)
	}

	items, err := r.scan(ctx, nil)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *dynamoContentRepository) queryCategory(ctx context.Context, category string, limit int) ([]*model.Content, error) {
	keyCond := expression.Key("category").Equal(expression.Value(category))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.categoryIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	var items []*model.Content
	for {
		input.Limit = aws.Int32(int32(limit - len(items)))
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query content: %w", err)
		}
		page, err := decodeContents(out.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if len(items) >= limit || len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

func (r *dynamoContentRepository) Update(ctx context.Context, c *model.Content, expectedVersion int64) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	cond := expression.AttributeExists(expression.Name("id")).
		And(expression.Name("version").Equal(expression.Value(expectedVersion)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                           aws.String(r.table),
		Item:                                item,
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if old, failed := conditionFailed(err); failed {
		if len(old) == 0 {
			return ErrContentNotFound
		}
		return ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

func (r *dynamoContentRepository) Delete(ctx context.Context, id string) (*model.Content, error) {
	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build condition: %w", err)
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      stringKey("id", id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
		ReturnValues:             types.ReturnValueAllOld,
	})
	if _, failed := conditionFailed(err); failed {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete content: %w", err)
	}
	return decodeContent(out.Attributes)
}

func (r *dynamoContentRepository) WithFiles(ctx context.Context) ([]*model.Content, error) {
	filter := expression.AttributeExists(expression.Name("fileKey"))
	return r.scan(ctx, &filter)
}

func (r *dynamoContentRepository) scan(ctx context.Context, filter *expression.ConditionBuilder) ([]*model.Content, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.table)}
	if filter != nil {
		expr, err := expression.NewBuilder().WithFilter(*filter).Build()
		if err != nil {
			return nil, fmt.Errorf("build filter: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []*model.Content
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		page, err := decodeContents(out.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}

func decodeContent(item map[string]types.AttributeValue) (*model.Content, error) {
	c := &model.Content{}
	err := attributevalue.UnmarshalMap(item, c)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if c.BlobStatus == "" {
		c.BlobStatus = model.BlobNone
	}
	return c, nil
}

func decodeContents(items []map[string]types.AttributeValue) ([]*model.Content, error) {
	out := make([]*model.Content, 0, len(items))
	for _, item := range items {
		c, err := decodeContent(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
