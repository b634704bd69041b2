package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ProfileService reads the role list of each user
type ProfileService struct {
	collection *mongo.Collection
	cache      *redisclient.Client
	cacheTTL   time.Duration
	adminRole  string
	logger     *zap.Logger
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(database *mongo.Database, collection string, cache *redisclient.Client, cacheTTL time.Duration, adminRole string, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		collection: database.Collection(collection),
		cache:      cache,
		cacheTTL:   cacheTTL,
		adminRole:  adminRole,
		logger:     logger,
	}
}

func profileCacheKey(uid string) string {
	return fmt.Sprintf("profile:roles:%s", uid)
}

// Roles returns the roles of uid. A user without a profile has no roles.
func (s *ProfileService) Roles(ctx context.Context, uid string) ([]string, error) {
	cacheKey := profileCacheKey(uid)
	ctx, span := utils.TraceCacheGet(ctx, cacheKey)
	defer span.End()

	if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
		var roles []string
		if err := json.Unmarshal([]byte(cached), &roles); err == nil {
			observability.CacheHits.WithLabelValues("profile_roles").Inc()
			return roles, nil
		}
	}

	var profile models.UserProfile
	err := utils.FindOneWithTimeout(ctx, s.collection, bson.M{"_id": uid}, &profile, utils.DefaultQueryTimeout)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		observability.DatabaseOperations.WithLabelValues("find_profile", "error").Inc()
		s.logger.Error("failed to read user profile", zap.String("uid", uid), zap.Error(err))
		return nil, fmt.Errorf("failed to read user profile: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("find_profile", "success").Inc()

	roles := profile.Roles
	if roles == nil {
		roles = []string{}
	}
	if data, err := json.Marshal(roles); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache user roles", zap.String("uid", uid), zap.Error(err))
		}
	}
	return roles, nil
}

// IsAdmin reports whether uid holds the configured admin role
func (s *ProfileService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	roles, err := s.Roles(ctx, uid)
	if err != nil {
		return false, err
	}
	return (&models.UserProfile{Roles: roles}).HasRole(s.adminRole), nil
}

// SetRoles replaces the roles of uid, creating the profile if needed
func (s *ProfileService) SetRoles(ctx context.Context, uid, email string, roles []string) (*models.UserProfile, error) {
	if roles == nil {
		roles = []string{}
	}
	now := time.Now().UTC()
	set := bson.M{"roles": roles, "updatedAt": now}
	if email != "" {
		set["email"] = email
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	if _, err := utils.UpsertOneWithTimeout(ctx, s.collection, bson.M{"_id": uid}, update, utils.DefaultQueryTimeout); err != nil {
		observability.DatabaseOperations.WithLabelValues("upsert_profile", "error").Inc()
		return nil, fmt.Errorf("failed to save user profile: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("upsert_profile", "success").Inc()

	if err := s.cache.Del(ctx, profileCacheKey(uid)).Err(); err != nil {
		s.logger.Warn("failed to invalidate roles cache", zap.String("uid", uid), zap.Error(err))
	}

	var profile models.UserProfile
	if err := utils.FindOneWithTimeout(ctx, s.collection, bson.M{"_id": uid}, &profile, utils.DefaultQueryTimeout); err != nil {
		return nil, fmt.Errorf("failed to read user profile: %w", err)
	}
	return &profile, nil
}
