package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/prefeitura-rio/app-fomento/internal/config"
	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeBairro lower-cases a neighbourhood name, strips accents and
// collapses whitespace so free-text answers can be looked up in the mapping.
func NormalizeBairro(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// ZoneService keeps the per-city bairro to zona table
type ZoneService struct {
	database *mongo.Database
	cache    *redisclient.Client
	cfg      *config.Config
	logger   *zap.Logger
}

// NewZoneService creates a new ZoneService instance
func NewZoneService(database *mongo.Database, cache *redisclient.Client, cfg *config.Config, logger *zap.Logger) *ZoneService {
	return &ZoneService{
		database: database,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

func zoneCacheKey(cityID string) string {
	return fmt.Sprintf("zonas:%s", cityID)
}

// Mapping returns the normalized bairro to zona table of cityID with caching
func (s *ZoneService) Mapping(ctx context.Context, cityID string) (map[string]models.Zona, error) {
	cacheKey := zoneCacheKey(cityID)
	ctx, span := utils.TraceCacheGet(ctx, cacheKey)
	defer span.End()

	if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
		var mapping map[string]models.Zona
		if err := json.Unmarshal([]byte(cached), &mapping); err == nil {
			observability.CacheHits.WithLabelValues("zone_mapping").Inc()
			return mapping, nil
		}
	}

	ctx, dbSpan := utils.TraceDatabaseFind(ctx, s.cfg.ZonaCollection, "cityId")
	defer dbSpan.End()

	var rows []models.ZonaBairro
	collection := s.database.Collection(s.cfg.ZonaCollection)
	if err := utils.FindAllWithTimeout(ctx, collection, bson.M{"cityId": cityID}, &rows, utils.DefaultQueryTimeout); err != nil {
		observability.DatabaseOperations.WithLabelValues("find_zonas", "error").Inc()
		s.logger.Error("failed to query zone mapping", zap.String("city_id", cityID), zap.Error(err))
		return nil, fmt.Errorf("failed to query zone mapping: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("find_zonas", "success").Inc()

	mapping := make(map[string]models.Zona, len(rows))
	for _, row := range rows {
		mapping[row.Bairro] = row.Zona
	}

	if data, err := json.Marshal(mapping); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.cfg.ZoneCacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache zone mapping", zap.String("city_id", cityID), zap.Error(err))
		}
	}

	return mapping, nil
}

// SetZona maps bairro of cityID to zona and invalidates the cached table
func (s *ZoneService) SetZona(ctx context.Context, cityID, bairro string, zona models.Zona) (*models.ZonaBairro, error) {
	z, ok := models.ParseZona(string(zona))
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidZona, zona)
	}
	key := NormalizeBairro(bairro)
	if key == "" {
		return nil, fmt.Errorf("bairro is required")
	}

	row := models.ZonaBairro{CityID: cityID, Bairro: key, Zona: z}
	collection := s.database.Collection(s.cfg.ZonaCollection)
	filter := bson.M{"cityId": cityID, "bairro": key}
	if _, err := utils.UpsertOneWithTimeout(ctx, collection, filter, bson.M{"$set": row}, utils.DefaultQueryTimeout); err != nil {
		observability.DatabaseOperations.WithLabelValues("upsert_zona", "error").Inc()
		return nil, fmt.Errorf("failed to save zone mapping: %w", err)
	}
	observability.DatabaseOperations.WithLabelValues("upsert_zona", "success").Inc()

	if err := s.cache.Del(ctx, zoneCacheKey(cityID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate zone mapping cache", zap.String("city_id", cityID), zap.Error(err))
	}
	return &row, nil
}
