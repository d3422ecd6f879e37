package repository

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/balance"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
)

// TestClient is an in-memory implementation of the DynamoDB client interface
// for key-addressed operations. Query-based paths are exercised with the
// function-field mock client instead.
type TestClient struct {
	items map[string]map[string]types.AttributeValue
}

// NewTestClient creates a new test client with an empty items map
func NewTestClient() *TestClient {
	return &TestClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemKey(pk, sk types.AttributeValue) string {
	return pk.(*types.AttributeValueMemberS).Value + "#" + sk.(*types.AttributeValueMemberS).Value
}

// GetItem retrieves an item from the in-memory store
func (c *TestClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if item, exists := c.items[itemKey(params.Key["PK"], params.Key["SK"])]; exists {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

// PutItem adds or updates an item in the in-memory store
func (c *TestClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := itemKey(params.Item["PK"], params.Item["SK"])

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(PK)" {
		if _, exists := c.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("Item already exists")}
		}
	}

	c.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem removes an item from the in-memory store
func (c *TestClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(c.items, itemKey(params.Key["PK"], params.Key["SK"]))
	return &dynamodb.DeleteItemOutput{}, nil
}

// Query returns nothing; query paths use the mock client
func (c *TestClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{}}, nil
}

func testBalance(dateKey string, closing string) *balance.DailyBalance {
	date, _ := time.Parse("2006-01-02", dateKey)
	return &balance.DailyBalance{
		DailyBalanceID:         "db-" + dateKey,
		Date:                   date,
		OpeningBalance:         decimal.RequireFromString("100.50"),
		TotalCredits:           decimal.NewFromInt(1500),
		TotalDebits:            decimal.NewFromInt(200),
		ClosingBalance:         decimal.RequireFromString(closing),
		CreditTransactionCount: 2,
		DebitTransactionCount:  1,
		TotalTransactionCount:  3,
		LastUpdated:            time.Now().UTC(),
	}
}

func TestBalanceUpsertAndGet(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves decimal amounts", func(t *testing.T) {
		repo := NewDynamoDBBalanceRepository(NewTestClient(), "test-table", slog.Default())
		b := testBalance("2025-01-15", "1400.50")

		_, err := repo.Upsert(ctx, b)
		require.NoError(t, err)

		got, err := repo.GetByDate(ctx, b.Date)
		require.NoError(t, err)
		assert.Equal(t, b.DailyBalanceID, got.DailyBalanceID)
		assert.True(t, got.OpeningBalance.Equal(decimal.RequireFromString("100.50")))
		assert.True(t, got.ClosingBalance.Equal(decimal.RequireFromString("1400.50")))
		assert.Equal(t, 3, got.TotalTransactionCount)
	})

	t.Run("upsert replaces an existing record wholesale", func(t *testing.T) {
		repo := NewDynamoDBBalanceRepository(NewTestClient(), "test-table", slog.Default())

		_, err := repo.Upsert(ctx, testBalance("2025-01-15", "1400.50"))
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, testBalance("2025-01-15", "999"))
		require.NoError(t, err)

		got, err := repo.GetByDate(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, got.ClosingBalance.Equal(decimal.NewFromInt(999)))
	})

	t.Run("missing date yields NOT_FOUND", func(t *testing.T) {
		repo := NewDynamoDBBalanceRepository(NewTestClient(), "test-table", slog.Default())

		_, err := repo.GetByDate(ctx, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("exists and delete", func(t *testing.T) {
		repo := NewDynamoDBBalanceRepository(NewTestClient(), "test-table", slog.Default())
		day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

		exists, err := repo.ExistsByDate(ctx, day)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.Upsert(ctx, testBalance("2025-01-15", "1400.50"))
		require.NoError(t, err)

		exists, err = repo.ExistsByDate(ctx, day)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, repo.DeleteByDate(ctx, day))

		exists, err = repo.ExistsByDate(ctx, day)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGetLatestBefore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("queries descending with an exclusive upper bound", func(t *testing.T) {
		prior := testBalance("2025-01-14", "1300")
		item, err := attributevalue.MarshalMap(newBalanceItem(prior))
		require.NoError(t, err)

		mock := client.NewMockDynamoDBClient()
		mock.QueryFn = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			assert.Nil(t, params.IndexName)
			assert.Equal(t, false, *params.ScanIndexForward)
			assert.Equal(t, int32(1), *params.Limit)

			var hasBound bool
			for _, v := range params.ExpressionAttributeValues {
				if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == "DATE#2025-01-15" {
					hasBound = true
				}
			}
			assert.True(t, hasBound, "query should bound the sort key at the target date")

			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
		}

		repo := NewDynamoDBBalanceRepository(mock, "test-table", slog.Default())
		got, err := repo.GetLatestBefore(ctx, day)

		require.NoError(t, err)
		assert.Equal(t, "db-2025-01-14", got.DailyBalanceID)
		assert.True(t, got.ClosingBalance.Equal(decimal.NewFromInt(1300)))
	})

	t.Run("empty result yields NOT_FOUND", func(t *testing.T) {
		mock := client.NewMockDynamoDBClient()
		repo := NewDynamoDBBalanceRepository(mock, "test-table", slog.Default())

		_, err := repo.GetLatestBefore(ctx, day)

		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestGetLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("takes the newest record across the whole partition", func(t *testing.T) {
		latest := testBalance("2025-02-01", "2000")
		item, err := attributevalue.MarshalMap(newBalanceItem(latest))
		require.NoError(t, err)

		mock := client.NewMockDynamoDBClient()
		mock.QueryFn = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			assert.Equal(t, false, *params.ScanIndexForward)
			assert.Equal(t, int32(1), *params.Limit)
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
		}

		repo := NewDynamoDBBalanceRepository(mock, "test-table", slog.Default())
		got, err := repo.GetLatest(ctx)

		require.NoError(t, err)
		assert.Equal(t, "db-2025-02-01", got.DailyBalanceID)
	})
}

func TestBalanceGetByDateRange(t *testing.T) {
	ctx := context.Background()

	t.Run("follows pagination and keeps ascending order", func(t *testing.T) {
		first, err := attributevalue.MarshalMap(newBalanceItem(testBalance("2025-01-15", "100")))
		require.NoError(t, err)
		second, err := attributevalue.MarshalMap(newBalanceItem(testBalance("2025-01-16", "200")))
		require.NoError(t, err)

		var calls int
		mock := client.NewMockDynamoDBClient()
		mock.QueryFn = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, params.ExclusiveStartKey)
				return &dynamodb.QueryOutput{
					Items:            []map[string]types.AttributeValue{first},
					LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "BALANCE"}},
				}, nil
			}
			assert.NotNil(t, params.ExclusiveStartKey)
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{second}}, nil
		}

		repo := NewDynamoDBBalanceRepository(mock, "test-table", slog.Default())
		got, err := repo.GetByDateRange(ctx,
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, calls)
		assert.Equal(t, "2025-01-15", got[0].DateKey())
		assert.Equal(t, "2025-01-16", got[1].DateKey())
	})
}
