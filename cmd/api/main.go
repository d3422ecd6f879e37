package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/hirosato/go-cashflow-ledger/internal/api/handlers"
	"github.com/hirosato/go-cashflow-ledger/internal/api/middleware"
	"github.com/hirosato/go-cashflow-ledger/internal/api/response"
	envconfig "github.com/hirosato/go-cashflow-ledger/internal/common/config"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/balance"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/notification"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/transaction"
	"github.com/hirosato/go-cashflow-ledger/internal/domain/user"
	ddbclient "github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/client"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/dynamodb/repository"
	"github.com/hirosato/go-cashflow-ledger/internal/platform/secrets"
	snspkg "github.com/hirosato/go-cashflow-ledger/internal/platform/sns"
)

var (
	logger             *slog.Logger
	config             *envconfig.Config
	routeHandler       middleware.APIGatewayHandler
	transactionHandler *handlers.TransactionHandler
	balanceHandler     *handlers.BalanceHandler
	userHandler        *handlers.UserHandler
)

func init() {
	// Initialize logger
	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var err error
	config, err = envconfig.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load Env config: %v", err)
	}

	// Load AWS configuration
	awscfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	// Initialize DynamoDB client
	dbClient, err := ddbclient.NewDynamoDBClient(context.Background(), config.AWSRegion)
	if err != nil {
		log.Fatalf("Failed to create DynamoDB client: %v", err)
	}

	// Initialize repositories
	factory := repository.NewFactory(dbClient, config.DynamoDBTableName, logger)
	transactionRepo := factory.TransactionRepository()
	balanceRepo := factory.BalanceRepository()
	userRepo := factory.UserRepository()

	// Initialize event publisher. Without a topic, events are discarded.
	var publisher notification.Publisher = notification.NopPublisher{}
	if config.EventTopicARN != "" {
		publisher = snspkg.NewNotifier(awssns.NewFromConfig(awscfg), config.EventTopicARN, logger)
	}

	// Initialize signing key source
	secretsClient := secretsmanager.NewFromConfig(awscfg)
	signingKeys := secrets.NewSigningKeyRepository(secretsClient, config.JWTSecretID, config.JWTSecretFallback, logger)

	// Initialize services
	transactionService := transaction.NewService(transactionRepo, publisher, logger)
	balanceService := balance.NewService(balanceRepo, transactionRepo, publisher, logger)
	userService := user.NewService(userRepo, signingKeys, publisher, logger)

	// Initialize handlers
	transactionHandler = handlers.NewTransactionHandler(transactionService)
	balanceHandler = handlers.NewBalanceHandler(balanceService)
	userHandler = handlers.NewUserHandler(userService)

	// Initialize middleware chain
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}

	loggingMw := middleware.NewLoggingMiddleware()
	recoveryMw := middleware.NewRecoveryMiddleware()
	authMw := middleware.NewAuthMiddleware(signingKeys, zapLogger)

	routeHandler = loggingMw.Handle(recoveryMw.Handle(authMw.Handle(route)))
}

// route dispatches a request to its endpoint handler
func route(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := request.Path
	method := request.HTTPMethod

	switch {
	case path == "/health" && method == "GET":
		return response.OK(map[string]string{"status": "ok"}, request.RequestContext.RequestID), nil

	case path == "/users/register" && method == "POST":
		return userHandler.Register(ctx, logger, request)
	case path == "/users/login" && method == "POST":
		return userHandler.Login(ctx, logger, request)
	case path == "/users/me" && method == "GET":
		return userHandler.Me(ctx, logger, request)

	case path == "/transactions" && method == "POST":
		return transactionHandler.Create(ctx, logger, request)
	case path == "/transactions" && method == "GET":
		return transactionHandler.List(ctx, logger, request)
	case strings.HasPrefix(path, "/transactions/"):
		withPathParameter(&request, "id", strings.TrimPrefix(path, "/transactions/"))
		switch method {
		case "GET":
			return transactionHandler.Get(ctx, logger, request)
		case "PUT":
			return transactionHandler.Update(ctx, logger, request)
		case "DELETE":
			return transactionHandler.Delete(ctx, logger, request)
		}

	case path == "/balances/consolidate" && method == "POST":
		return balanceHandler.Consolidate(ctx, logger, request)
	case path == "/balances" && method == "GET":
		return balanceHandler.GetRange(ctx, logger, request)
	case strings.HasPrefix(path, "/balances/"):
		withPathParameter(&request, "date", strings.TrimPrefix(path, "/balances/"))
		switch method {
		case "GET":
			return balanceHandler.Get(ctx, logger, request)
		case "DELETE":
			return balanceHandler.Delete(ctx, logger, request)
		}
	}

	return response.NotFound("Endpoint not found"), nil
}

// withPathParameter records a path segment so handlers can read it the same
// way whether routing happened here or in API Gateway.
func withPathParameter(request *events.APIGatewayProxyRequest, name, value string) {
	if request.PathParameters == nil {
		request.PathParameters = make(map[string]string)
	}
	request.PathParameters[name] = value
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    response.DefaultHeaders(),
		}, nil
	}

	return routeHandler(ctx, logger, request)
}

func main() {
	lambda.Start(handler)
}
