package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/hirosato/go-cashflow-ledger/internal/domain/balance"
	commonErrors "github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
)

// balancePartition is the single partition all daily balance records live in.
// Sort keys are DATE#YYYY-MM-DD, so lexicographic order is date order and the
// latest record is a descending query with limit 1.
const balancePartition = "BALANCE"

// DynamoDBBalanceRepository implements the balance.Repository interface
type DynamoDBBalanceRepository struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewDynamoDBBalanceRepository creates a new DynamoDBBalanceRepository
func NewDynamoDBBalanceRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBBalanceRepository {
	return &DynamoDBBalanceRepository{
		client: client,
		table:  table,
		logger: logger,
	}
}

// balanceItem is the DynamoDB shape of a daily balance. All monetary values
// are stored as decimal strings.
type balanceItem struct {
	PK                     string    `dynamodbav:"PK"`
	SK                     string    `dynamodbav:"SK"`
	Type                   string    `dynamodbav:"Type"`
	DailyBalanceID         string    `dynamodbav:"dailyBalanceId"`
	Date                   time.Time `dynamodbav:"date"`
	DateKey                string    `dynamodbav:"dateKey"`
	OpeningBalance         string    `dynamodbav:"openingBalance"`
	TotalCredits           string    `dynamodbav:"totalCredits"`
	TotalDebits            string    `dynamodbav:"totalDebits"`
	ClosingBalance         string    `dynamodbav:"closingBalance"`
	CreditTransactionCount int       `dynamodbav:"creditTransactionCount"`
	DebitTransactionCount  int       `dynamodbav:"debitTransactionCount"`
	TotalTransactionCount  int       `dynamodbav:"totalTransactionCount"`
	LastUpdated            time.Time `dynamodbav:"lastUpdated"`
}

func balanceSortKey(dateKey string) string {
	return fmt.Sprintf("DATE#%s", dateKey)
}

func newBalanceItem(b *balance.DailyBalance) balanceItem {
	dateKey := b.DateKey()
	return balanceItem{
		PK:                     balancePartition,
		SK:                     balanceSortKey(dateKey),
		Type:                   "dailyBalance",
		DailyBalanceID:         b.DailyBalanceID,
		Date:                   b.Date.UTC(),
		DateKey:                dateKey,
		OpeningBalance:         b.OpeningBalance.String(),
		TotalCredits:           b.TotalCredits.String(),
		TotalDebits:            b.TotalDebits.String(),
		ClosingBalance:         b.ClosingBalance.String(),
		CreditTransactionCount: b.CreditTransactionCount,
		DebitTransactionCount:  b.DebitTransactionCount,
		TotalTransactionCount:  b.TotalTransactionCount,
		LastUpdated:            b.LastUpdated,
	}
}

func (item *balanceItem) toDailyBalance() (*balance.DailyBalance, error) {
	amounts := make([]decimal.Decimal, 4)
	for i, raw := range []string{item.OpeningBalance, item.TotalCredits, item.TotalDebits, item.ClosingBalance} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, commonErrors.NewInternalError("stored balance amount is not a valid decimal", err)
		}
		amounts[i] = d
	}
	return &balance.DailyBalance{
		DailyBalanceID:         item.DailyBalanceID,
		Date:                   item.Date,
		OpeningBalance:         amounts[0],
		TotalCredits:           amounts[1],
		TotalDebits:            amounts[2],
		ClosingBalance:         amounts[3],
		CreditTransactionCount: item.CreditTransactionCount,
		DebitTransactionCount:  item.DebitTransactionCount,
		TotalTransactionCount:  item.TotalTransactionCount,
		LastUpdated:            item.LastUpdated,
	}, nil
}

// GetByDate retrieves the balance for a calendar day
func (r *DynamoDBBalanceRepository) GetByDate(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: balancePartition},
			"SK": &types.AttributeValueMemberS{Value: balanceSortKey(balance.DateKey(date))},
		},
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to get daily balance", err)
	}

	if result.Item == nil {
		return nil, commonErrors.NewNotFoundError("daily balance not found")
	}

	var item balanceItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal daily balance", err)
	}

	return item.toDailyBalance()
}

// GetByDateRange retrieves balances within an inclusive day range, ascending
func (r *DynamoDBBalanceRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]balance.DailyBalance, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(balancePartition)).
		And(expression.Key("SK").Between(
			expression.Value(balanceSortKey(balance.DateKey(startDate))),
			expression.Value(balanceSortKey(balance.DateKey(endDate))),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}

	balances := []balance.DailyBalance{}
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewStorageError("failed to query daily balances", err)
		}

		var items []balanceItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal daily balances", err)
		}

		for i := range items {
			b, err := items[i].toDailyBalance()
			if err != nil {
				return nil, err
			}
			balances = append(balances, *b)
		}

		if result.LastEvaluatedKey == nil {
			return balances, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// GetLatest retrieves the most recently dated balance
func (r *DynamoDBBalanceRepository) GetLatest(ctx context.Context) (*balance.DailyBalance, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(balancePartition)).
		And(expression.Key("SK").BeginsWith("DATE#"))
	return r.queryOneDescending(ctx, keyCondition)
}

// GetLatestBefore retrieves the most recently dated balance strictly before
// the given day. This is what anchors the opening-balance carry-forward.
func (r *DynamoDBBalanceRepository) GetLatestBefore(ctx context.Context, date time.Time) (*balance.DailyBalance, error) {
	keyCondition := expression.Key("PK").Equal(expression.Value(balancePartition)).
		And(expression.Key("SK").LessThan(expression.Value(balanceSortKey(balance.DateKey(date)))))
	return r.queryOneDescending(ctx, keyCondition)
}

func (r *DynamoDBBalanceRepository) queryOneDescending(ctx context.Context, keyCondition expression.KeyConditionBuilder) (*balance.DailyBalance, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to query daily balances", err)
	}

	if len(result.Items) == 0 {
		return nil, commonErrors.NewNotFoundError("daily balance not found")
	}

	var item balanceItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal daily balance", err)
	}

	return item.toDailyBalance()
}

// Upsert writes the balance record for its date, replacing any previous
// record wholesale. A PutItem is atomic per item, which is the only
// atomicity the consolidation path needs.
func (r *DynamoDBBalanceRepository) Upsert(ctx context.Context, b *balance.DailyBalance) (*balance.DailyBalance, error) {
	item, err := attributevalue.MarshalMap(newBalanceItem(b))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal daily balance", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to upsert daily balance", err)
	}

	return b, nil
}

// ExistsByDate checks whether a balance record exists for a calendar day
func (r *DynamoDBBalanceRepository) ExistsByDate(ctx context.Context, date time.Time) (bool, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: balancePartition},
			"SK": &types.AttributeValueMemberS{Value: balanceSortKey(balance.DateKey(date))},
		},
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, commonErrors.NewStorageError("failed to check daily balance existence", err)
	}
	return result.Item != nil, nil
}

// DeleteByDate removes the balance record for a calendar day
func (r *DynamoDBBalanceRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: balancePartition},
			"SK": &types.AttributeValueMemberS{Value: balanceSortKey(balance.DateKey(date))},
		},
	})
	if err != nil {
		return commonErrors.NewStorageError("failed to delete daily balance", err)
	}
	return nil
}
