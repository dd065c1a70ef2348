package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

const defaultStatsPeriodDays = 30

// StatsService serves the reporting snapshot, caching aggregates in Redis
// for a short TTL so the dashboard does not hammer the aggregation queries.
type StatsService struct {
	stats  repository.StatsRepository
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the service. A nil cache disables caching.
func NewStatsService(stats repository.StatsRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsService {
	return &StatsService{stats: stats, cache: cache, ttl: ttl, logger: logger}
}

// Statistics computes the aggregate snapshot over the trailing period. Cache
// failures degrade to a direct query.
func (s *StatsService) Statistics(ctx context.Context, periodDays int) (*domain.Statistics, error) {
	if periodDays <= 0 {
		periodDays = defaultStatsPeriodDays
	}
	key := fmt.Sprintf("stats:snapshot:%dd", periodDays)

	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	to := time.Now()
	from := to.AddDate(0, 0, -periodDays)
	stats, err := s.stats.Aggregate(ctx, from, to)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats.PeriodDays = periodDays

	s.toCache(ctx, key, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context, key string) *domain.Statistics {
	if s.cache == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && s.logger != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats domain.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, key string, stats *domain.Statistics) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
