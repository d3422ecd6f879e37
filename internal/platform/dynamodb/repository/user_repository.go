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

	commonErrors "github.com/hirosato/go-cashflow-ledger/internal/domain/errors"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/user"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
)

// DynamoDBUserRepository implements the user.Repository interface
type DynamoDBUserRepository struct {
	client client.Client
	table  string
	logger *slog.Logger
}

// NewDynamoDBUserRepository creates a new DynamoDBUserRepository
func NewDynamoDBUserRepository(client client.Client, table string, logger *slog.Logger) *DynamoDBUserRepository {
	return &DynamoDBUserRepository{
		client: client,
		table:  table,
		logger: logger,
	}
}

type userItem struct {
	PK           string     `dynamodbav:"PK"`
	SK           string     `dynamodbav:"SK"`
	GSI1PK       string     `dynamodbav:"GSI1PK"`
	GSI1SK       string     `dynamodbav:"GSI1SK"`
	Type         string     `dynamodbav:"Type"`
	UserID       string     `dynamodbav:"userId"`
	Username     string     `dynamodbav:"username"`
	Email        string     `dynamodbav:"email"`
	Phone        string     `dynamodbav:"phone,omitempty"`
	PasswordHash string     `dynamodbav:"passwordHash"`
	Role         string     `dynamodbav:"role"`
	Status       string     `dynamodbav:"status"`
	CreatedAt    time.Time  `dynamodbav:"createdAt"`
	UpdatedAt    *time.Time `dynamodbav:"updatedAt,omitempty"`
}

func newUserItem(u *user.User) userItem {
	return userItem{
		PK:           fmt.Sprintf("USER#%s", u.UserID),
		SK:           "USER",
		GSI1PK:       fmt.Sprintf("USEREMAIL#%s", u.Email),
		GSI1SK:       "USER",
		Type:         "user",
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (item *userItem) toUser() *user.User {
	return &user.User{
		UserID:       item.UserID,
		Username:     item.Username,
		Email:        item.Email,
		Phone:        item.Phone,
		PasswordHash: item.PasswordHash,
		Role:         user.Role(item.Role),
		Status:       user.Status(item.Status),
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// Create persists a new user. Email uniqueness is enforced by checking the
// email index before the write; the conditional put then guards the id.
func (r *DynamoDBUserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	_, err := r.GetByEmail(ctx, u.Email)
	if err == nil {
		return nil, commonErrors.NewConflictError("a user with this email already exists")
	}
	if !commonErrors.IsNotFound(err) {
		return nil, err
	}

	item, err := attributevalue.MarshalMap(newUserItem(u))
	if err != nil {
		return nil, commonErrors.NewInternalError("failed to marshal user", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condCheckErr *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckErr) {
			return nil, commonErrors.NewConflictError("user already exists")
		}
		return nil, commonErrors.NewStorageError("failed to create user", err)
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (r *DynamoDBUserRepository) GetByID(ctx context.Context, userID string) (*user.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			"SK": &types.AttributeValueMemberS{Value: "USER"},
		},
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to get user", err)
	}

	if result.Item == nil {
		return nil, commonErrors.NewNotFoundError("user not found")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal user", err)
	}

	return item.toUser(), nil
}

// GetByEmail retrieves a user through the email index
func (r *DynamoDBUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	keyCondition := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("USEREMAIL#%s", email))).
		And(expression.Key("GSI1SK").Equal(expression.Value("USER")))

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
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, commonErrors.NewStorageError("failed to query user", err)
	}

	if len(result.Items) == 0 {
		return nil, commonErrors.NewNotFoundError("user not found")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, commonErrors.NewInternalError("failed to unmarshal user", err)
	}

	return item.toUser(), nil
}
