package tests

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/config"
	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TestContainers holds references to test containers
type TestContainers struct {
	MongoContainer *mongodb.MongoDBContainer
	RedisContainer *redis.RedisContainer
	Config         *config.Config
	MongoDB        *mongo.Database
	Redis          *redisclient.Client
	Cleanup        func()
}

// testConfig returns the settings the services under test read.
func testConfig(mongoURI, redisAddr string) *config.Config {
	return &config.Config{
		Environment:          "test",
		LogLevel:             "debug",
		MongoURI:             mongoURI,
		MongoDatabase:        "fomento_test",
		RedisURI:             redisAddr,
		ProponenteCollection: "proponentes",
		UserLogCollection:    "user_logs",
		ProfileCollection:    "usuarios",
		ProjetoCollection:    "projetos",
		ZonaCollection:       "zonas_bairros",
		ProfileCacheTTL:      time.Minute,
		CEPCacheTTL:          time.Hour,
		ZoneCacheTTL:         time.Minute,
		SubmitLockTTL:        30 * time.Second,
		AdminRole:            "admin",
		DraftTTL:             time.Hour,
		DraftJanitorPeriod:   time.Minute,
		EmailQueueSize:       10,
		EmailWorkers:         1,
	}
}

// SetupTestContainers starts MongoDB and Redis containers for testing.
// It is skipped with -short.
func SetupTestContainers(t *testing.T) *TestContainers {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7.0")
	require.NoError(t, err, "Failed to start MongoDB container")

	redisContainer, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "Failed to start Redis container")

	mongoURI, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MongoDB connection string")

	redisURI, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get Redis connection string")

	// NewRedis dials a host:port address
	cfg := testConfig(mongoURI, strings.TrimPrefix(redisURI, "redis://"))
	logger := zap.NewNop()

	database, err := config.NewMongoDB(ctx, cfg, logger)
	require.NoError(t, err, "Failed to connect to MongoDB")

	cache := config.NewRedis(ctx, cfg, logger)
	require.NoError(t, cache.Ping(ctx).Err(), "Failed to ping Redis")

	cleanup := func() {
		ctx := context.Background()
		_ = database.Client().Disconnect(ctx)
		_ = mongoContainer.Terminate(ctx)
		_ = redisContainer.Terminate(ctx)
	}
	t.Cleanup(cleanup)

	return &TestContainers{
		MongoContainer: mongoContainer,
		RedisContainer: redisContainer,
		Config:         cfg,
		MongoDB:        database,
		Redis:          cache,
		Cleanup:        cleanup,
	}
}

// CleanupDatabase drops all collections in the test database
func CleanupDatabase(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()
	collections, err := db.ListCollectionNames(ctx, bson.M{})
	require.NoError(t, err, "Failed to list collections")

	for _, collection := range collections {
		err := db.Collection(collection).Drop(ctx)
		require.NoError(t, err, fmt.Sprintf("Failed to drop collection %s", collection))
	}
}
