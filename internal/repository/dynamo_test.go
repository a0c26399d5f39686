package repository

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/northwind/salesportal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in memory and evaluates the small set of expressions
// the repositories build: attribute_exists, attribute_not_exists and
// equality, joined with AND.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	keys   map[string]string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
		keys: map[string]string{
			"content":     "id",
			"credentials": "key",
			"revocations": "tokenId",
		},
	}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = map[string]map[string]types.AttributeValue{}
		f.tables[name] = t
	}
	return t
}

func (f *fakeDynamo) keyOf(table string, item map[string]types.AttributeValue) string {
	return item[f.keys[table]].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	return &dynamodb.GetItemOutput{Item: f.table(table)[f.keyOf(table, in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	key := f.keyOf(table, in.Item)
	old := f.table(table)[key]

	if in.ConditionExpression != nil && !evalCondition(*in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues, old) {
		ccf := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		if in.ReturnValuesOnConditionCheckFailure == types.ReturnValuesOnConditionCheckFailureAllOld {
			ccf.Item = old
		}
		return nil, ccf
	}
	f.table(table)[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	key := f.keyOf(table, in.Key)
	old := f.table(table)[key]

	if in.ConditionExpression != nil && !evalCondition(*in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues, old) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	delete(f.table(table), key)

	out := &dynamodb.DeleteItemOutput{}
	if in.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.table(aws.ToString(in.TableName)) {
		if evalCondition(aws.ToString(in.KeyConditionExpression), in.ExpressionAttributeNames, in.ExpressionAttributeValues, item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a := items[i]["createdAt"].(*types.AttributeValueMemberS).Value
		b := items[j]["createdAt"].(*types.AttributeValueMemberS).Value
		if aws.ToBool(in.ScanIndexForward) {
			return a < b
		}
		return a > b
	})
	if in.Limit != nil && int(*in.Limit) < len(items) {
		items = items[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []map[string]types.AttributeValue
	for _, item := range f.table(aws.ToString(in.TableName)) {
		if in.FilterExpression == nil || evalCondition(*in.FilterExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues, item) {
			items = append(items, item)
		}
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func evalCondition(expr string, names map[string]string, values map[string]types.AttributeValue, item map[string]types.AttributeValue) bool {
	for _, clause := range strings.Split(expr, " AND ") {
		clause = strings.TrimSpace(clause)
		for strings.HasPrefix(clause, "(") && strings.HasSuffix(clause, ")") {
			clause = strings.TrimSpace(clause[1 : len(clause)-1])
		}

		switch {
		case strings.HasPrefix(clause, "attribute_not_exists"):
			if _, ok := item[names[argName(clause)]]; ok {
				return false
			}
		case strings.HasPrefix(clause, "attribute_exists"):
			if _, ok := item[names[argName(clause)]]; !ok {
				return false
			}
		default:
			parts := strings.SplitN(clause, " = ", 2)
			if len(parts) != 2 {
				panic("fakeDynamo: unsupported clause " + clause)
			}
			if !reflect.DeepEqual(item[names[parts[0]]], values[parts[1]]) {
				return false
			}
		}
	}
	return true
}

func argName(clause string) string {
	start := strings.Index(clause, "(")
	end := strings.LastIndex(clause, ")")
	return strings.TrimSpace(clause[start+1 : end])
}

func TestDynamoCredentialRepository(t *testing.T) {
	repo := NewDynamoCredentialRepository(newFakeDynamo(), "credentials")
	ctx := context.Background()

	_, err := repo.ByKey(ctx, "contractor_password_hash")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	require.NoError(t, repo.Put(ctx, &model.Credential{Key: "contractor_password_hash", PasswordHash: "h", UpdatedAt: time.Now().UTC()}))

	got, err := repo.ByKey(ctx, "contractor_password_hash")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash)
}

func TestDynamoRevocationRepository(t *testing.T) {
	repo := NewDynamoRevocationRepository(newFakeDynamo(), "revocations")
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "dead", time.Now().Add(-time.Hour)))

	revoked, err := repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "dead")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "never")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestDynamoContentRepository_Lifecycle(t *testing.T) {
	repo := NewDynamoContentRepository(newFakeDynamo(), "content", "")
	ctx := context.Background()

	c := newContent("c1", model.CategoryPricing, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	c.Tags = model.Tags{"na"}
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, c), ErrContentExists)

	got, err := repo.ByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Title c1", got.Title)
	assert.Equal(t, model.Tags{"na"}, got.Tags)
	assert.Nil(t, got.FileKey)

	got.Title = "Renamed"
	got.Version = 2
	require.NoError(t, repo.Update(ctx, got, 1))
	assert.ErrorIs(t, repo.Update(ctx, got, 1), ErrVersionConflict)

	ghost := newContent("ghost", model.CategoryPricing, time.Now().UTC())
	assert.ErrorIs(t, repo.Update(ctx, ghost, 1), ErrContentNotFound)

	old, err := repo.Delete(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", old.Title)

	_, err = repo.Delete(ctx, "c1")
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = repo.ByID(ctx, "c1")
	assert.ErrorIs(t, err, ErrContentNotFound)
}

func TestDynamoContentRepository_List(t *testing.T) {
	repo := NewDynamoContentRepository(newFakeDynamo(), "content", "")
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newContent("a", model.CategoryPricing, base)))
	require.NoError(t, repo.Create(ctx, newContent("b", model.CategorySalesDecks, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newContent("c", model.CategoryPricing, base.Add(2*time.Minute))))

	all, err := repo.List(ctx, "", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(all))

	pricing, err := repo.List(ctx, model.CategoryPricing, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(pricing))

	limited, err := repo.List(ctx, model.CategoryPricing, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(limited))
}

func TestDynamoContentRepository_WithFiles(t *testing.T) {
	repo := NewDynamoContentRepository(newFakeDynamo(), "content", "")
	ctx := context.Background()

	now := time.Now().UTC()
	withFile := newContent("f", model.CategoryPricing, now)
	withFile.AttachFile("content/pricing/f/x.pdf", "x.pdf", "application/pdf", nil)
	require.NoError(t, repo.Create(ctx, withFile))
	require.NoError(t, repo.Create(ctx, newContent("n", model.CategoryPricing, now)))

	items, err := repo.WithFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, ids(items))
}
