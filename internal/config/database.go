package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

// NewMongoDB connects to MongoDB, verifies the connection and makes sure the
// indexes of every collection exist.
func NewMongoDB(ctx context.Context, cfg *Config, logger *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)

	if err := EnsureIndexes(ctx, db, cfg, logger); err != nil {
		logger.Error("failed to ensure indexes on startup", zap.Error(err))
	}

	logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(cfg.MongoURI)),
		zap.String("database", cfg.MongoDatabase),
	)
	return db, nil
}

// NewRedis connects to Redis and wraps the client with tracing. A failed ping
// is logged but not fatal; cache reads degrade to the database.
func NewRedis(ctx context.Context, cfg *Config, logger *zap.Logger) *redisclient.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisURI,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	client := redisclient.NewClient(rdb)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to Redis",
			zap.String("uri", cfg.RedisURI),
			zap.Error(err))
		return client
	}

	logger.Info("connected to Redis", zap.String("uri", cfg.RedisURI))
	return client
}

// maskMongoURI hides the credentials of a MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := "mongodb://"
	if strings.HasPrefix(uri, "mongodb+srv://") {
		scheme = "mongodb+srv://"
	}
	return scheme + "****:****@" + uri[at+1:]
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexSpecs(cfg *Config) []collectionIndexes {
	return []collectionIndexes{
		{
			collection: cfg.ProponenteCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "cityId", Value: 1}}, Options: options.Index().SetName("cityId_1")},
				{Keys: bson.D{{Key: "cityId", Value: 1}, {Key: "tipo", Value: 1}}, Options: options.Index().SetName("cityId_1_tipo_1")},
				{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("userId_1")},
			},
		},
		{
			collection: cfg.UserLogCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("updatedAt_-1")},
			},
		},
		{
			collection: cfg.ProfileCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_1")},
			},
		},
		{
			collection: cfg.ProjetoCollection,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "cityId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("cityId_1_status_1")},
				{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("userId_1")},
				{Keys: bson.D{{Key: "proponenteId", Value: 1}}, Options: options.Index().SetName("proponenteId_1")},
			},
		},
		{
			collection: cfg.ZonaCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "cityId", Value: 1}, {Key: "bairro", Value: 1}},
					Options: options.Index().SetName("cityId_1_bairro_1").SetUnique(true),
				},
			},
		},
	}
}

// EnsureIndexes creates the required indexes that do not exist yet
func EnsureIndexes(ctx context.Context, db *mongo.Database, cfg *Config, logger *zap.Logger) error {
	logger = logger.Named("database")
	logger.Info("ensuring required indexes exist")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, spec := range indexSpecs(cfg) {
		collection := db.Collection(spec.collection)
		for _, model := range spec.models {
			if err := ensureIndex(ctx, collection, model, logger); err != nil {
				return err
			}
		}
	}

	logger.Info("all required indexes verified")
	return nil
}

func ensureIndex(ctx context.Context, collection *mongo.Collection, model mongo.IndexModel, logger *zap.Logger) error {
	name := *model.Options.Name

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		logger.Error("failed to list indexes", zap.String("collection", collection.Name()), zap.Error(err))
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if existing, ok := index["name"].(string); ok && existing == name {
			logger.Debug("index already exists",
				zap.String("collection", collection.Name()),
				zap.String("index", name))
			return nil
		}
	}

	if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
		// Another instance may have created it concurrently.
		if mongo.IsDuplicateKeyError(err) || strings.Contains(err.Error(), "already exists") {
			logger.Info("index created by another instance",
				zap.String("collection", collection.Name()),
				zap.String("index", name))
			return nil
		}
		logger.Error("failed to create index",
			zap.String("collection", collection.Name()),
			zap.String("index", name),
			zap.Error(err))
		return err
	}

	logger.Info("created index",
		zap.String("collection", collection.Name()),
		zap.String("index", name))
	return nil
}
