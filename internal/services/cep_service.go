package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/models"
	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/redisclient"
	"github.com/prefeitura-rio/app-fomento/internal/utils"
	"github.com/prefeitura-rio/app-fomento/internal/utils/httpclient"
	"go.uber.org/zap"
)

// CEPService resolves Brazilian postal codes through ViaCEP
type CEPService struct {
	baseURL  string
	pool     *httpclient.HTTPClientPool
	cache    *redisclient.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCEPService creates a new CEPService instance
func NewCEPService(baseURL string, pool *httpclient.HTTPClientPool, cache *redisclient.Client, cacheTTL time.Duration, logger *zap.Logger) *CEPService {
	return &CEPService{
		baseURL:  baseURL,
		pool:     pool,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Lookup returns the address of cep. Punctuation is ignored; anything other
// than eight digits is ErrInvalidCEP.
func (s *CEPService) Lookup(ctx context.Context, cep string) (*models.Address, error) {
	digits := utils.OnlyDigits(cep)
	if len(digits) != 8 {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCEP, cep)
	}

	cacheKey := fmt.Sprintf("cep:%s", digits)
	ctx, span := utils.TraceCacheGet(ctx, cacheKey)
	defer span.End()

	if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
		var addr models.Address
		if err := json.Unmarshal([]byte(cached), &addr); err == nil {
			observability.CacheHits.WithLabelValues("cep_lookup").Inc()
			return &addr, nil
		}
	}

	addr, err := s.fetch(ctx, digits)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(addr); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache CEP", zap.String("cep", digits), zap.Error(err))
		}
	}
	return addr, nil
}

func (s *CEPService) fetch(ctx context.Context, digits string) (*models.Address, error) {
	ctx, span := utils.TraceExternalService(ctx, "viacep", "lookup")
	defer span.End()

	url := fmt.Sprintf("%s/%s/json/", s.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CEP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.pool.Do(req)
	if err != nil {
		utils.RecordErrorInSpan(span, err, map[string]interface{}{"cep": digits})
		return nil, fmt.Errorf("failed to call ViaCEP: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read ViaCEP response: %w", err)
	}

	// ViaCEP answers 400 for malformed codes and 200 with erro for unknown ones.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidCEP, digits)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ViaCEP returned status %d", resp.StatusCode)
	}

	var payload models.ViaCEPResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode ViaCEP response: %w", err)
	}
	if payload.NotFound() {
		return nil, fmt.Errorf("%w: %s", models.ErrCEPNotFound, digits)
	}

	utils.AddSpanAttribute(span, "cep.uf", payload.UF)
	return payload.ToAddress(), nil
}
