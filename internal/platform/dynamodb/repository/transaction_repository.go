package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	commonErrors "github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
)

// DynamoDBTransactionRepository implements the transaction.Repository interface
type DynamoDBTransactionRepository struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewDynamoDBTransactionRepository creates a new DynamoDBTransactionRepository
func NewDynamoDBTransactionRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBTransactionRepository {
	return &DynamoDBTransactionRepository{
		client: client,
		table:  table,
		logger: logger,
	}
}

// transactionItem is the DynamoDB shape of a transaction. Monetary amounts
// are stored as decimal strings so no binary float ever touches the table.
type transactionItem struct {
	PK            string    `dynamodbav:"PK"`
	SK            string    `dynamodbav:"SK"`
	GSI1PK        string    `dynamodbav:"GSI1PK"`
	GSI1SK        string    `dynamodbav:"GSI1SK"`
	GSI2PK        string    `dynamodbav:"GSI2PK"`
	GSI2SK        string    `dynamodbav:"GSI2SK"`
	Type          string    `dynamodbav:"Type"`
	TransactionID string    `dynamodbav:"transactionId"`
	Description   string    `dynamodbav:"description"`
	Amount        string    `dynamodbav:"amount"`
	Kind          string    `dynamodbav:"kind"`
	Date          time.Time `dynamodbav:"date"`
	DateKey       string    `dynamodbav:"dateKey"`
	Category      string    `dynamodbav:"category,omitempty"`
	Notes         string    `dynamodbav:"notes,omitempty"`
	CreatedAt     time.Time `dynamodbav:"createdAt"`
	UpdatedAt     time.Time `dynamodbav:"updatedAt"`
}

func transactionKeys(dateKey, transactionID string) (pk, sk string) {
	return fmt.Sprintf("TXDATE#%s", dateKey), fmt.Sprintf("TX#%s", transactionID)
}

func newTransactionItem(tx *transaction.Transaction) transactionItem {
	dateKey := tx.DateKey()
	pk, sk := transactionKeys(dateKey, tx.TransactionID)
	return transactionItem{
		PK:            pk,
		SK:            sk,
		GSI1PK:        fmt.Sprintf("TX#%s", tx.TransactionID),
		GSI1SK:        "TX",
		GSI2PK:        "TX",
		GSI2SK:        fmt.Sprintf("DATE#%s#TX#%s", dateKey, tx.TransactionID),
		Type:          "transaction",
		TransactionID: tx.TransactionID,
		Description:   tx.Description,
		Amount:        tx.Amount.String(),
		Kind:          string(tx.Kind),
		Date:          tx.Date.UTC(),
		DateKey:       dateKey,
		Category:      tx.Category,
		Notes:         tx.Notes,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

func (item *transactionItem) toTransaction() (*transaction.Transaction, error) {
	amount, err := decimal.NewFromString(item.Amount)
	if err != nil {
		return nil, commonErrors.NewInternalError("stored transaction amount is not a valid decimal", err)
	}
	return &transaction.Transaction{
		TransactionID: item.TransactionID,
		Description:   item.Description,
		Amount:        amount,
		Kind:          transaction.Kind(item.Kind),
		Date:          item.Date,
		Category:      item.Category,
		Notes:         item.Notes,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}, nil
}

// Create persists a new transaction
func (r *DynamoDBTransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	item, err := attributevalue.MarshalMap(newTransactionItem(tx))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal transaction", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewConflictError("transaction already exists")
		}
		return nil, commonErrors.NewStorageError("failed to create transaction", err)
	}

	return tx, nil
}

// GetByID retrieves a transaction through the id index
func (r *DynamoDBTransactionRepository) GetByID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("TX#%s", transactionID))).
		And(expression.Key("GSI1SK").Equal(expression.Value("TX")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String("GSI1"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1), // We expect only one item
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to query transaction", err)
	}

	if len(result.Items) == 0 {
		return nil, commonErrors.NewNotFoundError("transaction not found")
	}

	var item transactionItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal transaction", err)
	}

	return item.toTransaction()
}

// GetByDate retrieves the transactions of one calendar day
func (r *DynamoDBTransactionRepository) GetByDate(ctx context.Context, date time.Time) ([]transaction.Transaction, error) {
	pk, _ := transactionKeys(date.UTC().Format("2006-01-02"), "")

	keyCondition := expression.Key("PK").Equal(expression.Value(pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	return r.queryTransactions(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
}

// GetByDateRange retrieves transactions within an inclusive day range using
// the date-sorted index
func (r *DynamoDBTransactionRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time) ([]transaction.Transaction, error) {
	startKey := startDate.UTC().Format("2006-01-02")
	endKey := endDate.UTC().Format("2006-01-02")

	keyCondition := expression.Key("GSI2PK").Equal(expression.Value("TX")).
		And(expression.Key("GSI2SK").Between(
			expression.Value(fmt.Sprintf("DATE#%s", startKey)),
			expression.Value(fmt.Sprintf("DATE#%s￿", endKey)),
		))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to build expression", err)
	}

	return r.queryTransactions(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String("GSI2"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})
}

func (r *DynamoDBTransactionRepository) queryTransactions(ctx context.Context, input *dynamodb.QueryInput) ([]transaction.Transaction, error) {
	txs := []transaction.Transaction{}
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, commonErrors.NewStorageError("failed to query transactions", err)
		}

		var items []transactionItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, commonErrors.NewInternalError("failed to unmarshal transactions", err)
		}

		for i := range items {
			tx, err := items[i].toTransaction()
			if err != nil {
				return nil, err
			}
			txs = append(txs, *tx)
		}

		if result.LastEvaluatedKey == nil {
			return txs, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// Update fully replaces a transaction. When the date moved, the item is
// rewritten under its new day partition and the old item removed.
func (r *DynamoDBTransactionRepository) Update(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	existing, err := r.GetByID(ctx, tx.TransactionID)
	if err != nil {
		return nil, err
	}

	item, err := attributevalue.MarshalMap(newTransactionItem(tx))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal transaction", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to update transaction", err)
	}

	if existing.DateKey() != tx.DateKey() {
		if err := r.deleteItem(ctx, existing.DateKey(), tx.TransactionID); err != nil {
			return nil, err
		}
	}

	return tx, nil
}

// Delete removes a transaction
func (r *DynamoDBTransactionRepository) Delete(ctx context.Context, transactionID string) error {
	existing, err := r.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}
	return r.deleteItem(ctx, existing.DateKey(), transactionID)
}

func (r *DynamoDBTransactionRepository) deleteItem(ctx context.Context, dateKey, transactionID string) error {
	pk, sk := transactionKeys(dateKey, transactionID)
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return commonErrors.NewStorageError("failed to delete transaction", err)
	}
	return nil
}

// CountByDate counts the transactions of one calendar day
func (r *DynamoDBTransactionRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	pk, _ := transactionKeys(date.UTC().Format("2006-01-02"), "")

	keyCondition := expression.Key("PK").Equal(expression.Value(pk))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return 0, commonErrors.NewInternalError("failed to build expression", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	})
	if err != nil {
		return 0, commonErrors.NewStorageError("failed to count transactions", err)
	}

	return int(result.Count), nil
}
