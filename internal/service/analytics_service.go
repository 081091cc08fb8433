package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/enquiry-service/internal/config"
	"github.com/spec-kit/enquiry-service/internal/domain"
	"github.com/spec-kit/enquiry-service/internal/persistence"
	"github.com/spec-kit/enquiry-service/internal/repository"
)

// AnalyticsService computes derived reporting views over enquiries.
type AnalyticsService struct {
	enquiries repository.EnquiryRepository
	cache     *persistence.Redis
	logger    *zap.Logger
	cfg       config.AnalyticsConfig
}

// NewAnalyticsService constructs the service. The cache may be nil; the
// aggregate is then recomputed on every call.
func NewAnalyticsService(cfg config.AnalyticsConfig, enquiries repository.EnquiryRepository, cache *persistence.Redis, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{enquiries: enquiries, cache: cache, logger: logger, cfg: cfg}
}

// TopPerformers ranks staff by enquiries they closed inside the trailing
// window. Only closed, non-deleted, assigned enquiries count. Ties are
// broken by assignee id so the ranking is deterministic.
func (s *AnalyticsService) TopPerformers(ctx context.Context, windowDays, limit int) ([]domain.PerformerStat, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	if limit <= 0 {
		limit = s.cfg.TopLimit
	}

	cacheKey := fmt.Sprintf("analytics:top_performers:%d:%d", windowDays, limit)
	if cached, ok := s.cache.GetString(ctx, cacheKey); ok {
		var stats []domain.PerformerStat
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return stats, nil
		}
		s.logger.Warn("discarding malformed analytics cache entry", zap.String("key", cacheKey))
	}

	since := time.Now().AddDate(0, 0, -windowDays)
	stats, err := s.enquiries.TopPerformers(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []domain.PerformerStat{}
	}

	if encoded, err := json.Marshal(stats); err == nil {
		s.cache.SetString(ctx, cacheKey, string(encoded), time.Duration(s.cfg.CacheTTLSeconds)*time.Second)
	}
	return stats, nil
}
