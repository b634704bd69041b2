package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserLogService keeps the append-only action history of each user
type UserLogService struct {
	collection *mongo.Collection
	logger     *zap.Logger
	now        func() time.Time
}

// NewUserLogService creates a new UserLogService instance
func NewUserLogService(database *mongo.Database, collection string, logger *zap.Logger) *UserLogService {
	return &UserLogService{
		collection: database.Collection(collection),
		logger:     logger,
		now:        time.Now,
	}
}

// Append adds entry to the log of email, creating the log on first use.
// Entries are unioned into the array and never edited.
func (s *UserLogService) Append(ctx context.Context, email string, entry models.LogEntry) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.ErrUnauthenticated
	}
	if entry.Action == "" {
		return fmt.Errorf("log action is required")
	}

	now := s.now().UTC()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	ctx, span := utils.TraceDatabaseUpdate(ctx, s.collection.Name(), "_id", true)
	defer span.End()

	update := bson.M{
		"$addToSet":    bson.M{"entries": bson.M{"$each": []models.LogEntry{entry}}},
		"$setOnInsert": bson.M{"createdAt": now},
		"$set":         bson.M{"updatedAt": now},
	}
	if _, err := utils.UpsertOneWithTimeout(ctx, s.collection, bson.M{"_id": email}, update, utils.DefaultQueryTimeout); err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"log.action": entry.Action})
		observability.DatabaseOperations.WithLabelValues("append_user_log", "error").Inc()
		return fmt.Errorf("failed to append user log: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("append_user_log", "success").Inc()
	return nil
}

// AppendAsync appends in the background. Failures are only logged.
func (s *UserLogService) AppendAsync(email string, entry models.LogEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), utils.DefaultQueryTimeout)
		defer cancel()
		if err := s.Append(ctx, email, entry); err != nil {
			s.logger.Warn("failed to append user log",
				zap.String("user", observability.MaskEmail(email)),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}()
}

// Get returns the log of email
func (s *UserLogService) Get(ctx context.Context, email string) (*models.UserLog, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "_id")
	defer span.End()

	var log models.UserLog
	err := utils.FindOneWithTimeout(ctx, s.collection, bson.M{"_id": email}, &log, utils.DefaultQueryTimeout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user log: %w", err)
	}
	return &log, nil
}

// List returns a page of user logs, most recently active first
func (s *UserLogService) List(ctx context.Context, page, perPage int) (*models.PaginatedUserLogs, error) {
	ctx, span := utils.TraceDatabaseFind(ctx, s.collection.Name(), "all")
	defer span.End()

	total, err := utils.CountDocumentsWithTimeout(ctx, s.collection, bson.M{}, utils.DefaultQueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to count user logs: %w", err)
	}

	logs := []models.UserLog{}
	opts := utils.PageOptions(page, perPage).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if err := utils.FindAllWithTimeout(ctx, s.collection, bson.M{}, &logs, utils.DefaultQueryTimeout, opts); err != nil {
		return nil, fmt.Errorf("failed to list user logs: %w", err)
	}

	return &models.PaginatedUserLogs{
		Data: logs,
		Pagination: models.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      int(total),
			TotalPages: utils.TotalPages(total, perPage),
		},
	}, nil
}
