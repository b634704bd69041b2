package services

import (
	"context"
	"fmt"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ProponenteFinder reads every proponente of a city matching a predicate.
type ProponenteFinder interface {
	Find(ctx context.Context, cityID string, pred Predicate) ([]models.Proponente, error)
}

// ZoneMapper returns the normalized bairro to zona table of a city.
type ZoneMapper interface {
	Mapping(ctx context.Context, cityID string) (map[string]models.Zona, error)
}

// StatisticsService computes dashboard counters from the live proponente set.
type StatisticsService struct {
	finder ProponenteFinder
	zones  ZoneMapper
	logger *zap.Logger
}

// NewStatisticsService creates a statistics service. zones may be nil, in
// which case only the explicit zona answer classifies a record.
func NewStatisticsService(finder ProponenteFinder, zones ZoneMapper, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{
		finder: finder,
		zones:  zones,
		logger: logger,
	}
}

// ComputeStatistics counts the proponentes of cityID that match filters.
// Results are never cached.
func (s *StatisticsService) ComputeStatistics(ctx context.Context, cityID string, filters map[string]string) (*models.CityStatistics, error) {
	ctx, span := otel.Tracer("").Start(ctx, "StatisticsService.ComputeStatistics")
	defer span.End()
	span.SetAttributes(attribute.String("city.id", cityID))

	pred := BuildPredicate(filters)
	records, err := s.finder.Find(ctx, cityID, pred)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read proponentes")
		s.logger.Error("failed to read proponentes for statistics",
			zap.String("city_id", cityID),
			zap.Any("filters", pred.Active()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read proponentes: %w", err)
	}

	var mapping map[string]models.Zona
	if s.zones != nil {
		mapping, err = s.zones.Mapping(ctx, cityID)
		if err != nil {
			s.logger.Warn("zone mapping unavailable, classifying by explicit zona only",
				zap.String("city_id", cityID), zap.Error(err))
			mapping = nil
		}
	}

	stats := Aggregate(cityID, records, mapping, s.logger)
	span.SetAttributes(attribute.Int("statistics.total", stats.TotalProponentes))
	observability.StatisticsComputations.WithLabelValues(cityID).Inc()
	return &stats, nil
}

// Aggregate counts records by tipo and zone. Records of an unknown tipo are
// skipped so that both breakdowns always sum to the total.
func Aggregate(cityID string, records []models.Proponente, mapping map[string]models.Zona, logger *zap.Logger) models.CityStatistics {
	stats := models.CityStatistics{CityID: cityID}
	for i := range records {
		record := &records[i]
		if !stats.AddTipo(record.Tipo) {
			if logger != nil {
				logger.Warn("skipping proponente with unknown tipo",
					zap.String("id", record.ID.Hex()),
					zap.String("tipo", string(record.Tipo)))
			}
			continue
		}
		stats.TotalProponentes++
		stats.Zonas.Add(ClassifyZona(record, mapping))
	}
	return stats
}

// ClassifyZona returns the record's explicit zona answer when valid, then the
// city mapping of its bairro, and nao_informada otherwise.
func ClassifyZona(record *models.Proponente, mapping map[string]models.Zona) models.Zona {
	if v, ok := record.Answer("endereco.zona"); ok {
		if z, ok := models.ParseZona(v.String()); ok {
			return z
		}
	}
	if v, ok := record.Answer("endereco.bairro"); ok && len(mapping) > 0 {
		if z, ok := mapping[NormalizeBairro(v.String())]; ok {
			return z
		}
	}
	return models.ZonaNaoInformada
}
