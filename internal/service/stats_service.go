package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
	"github.com/helpdesk-io/helpdesk-service/internal/persistence"
	"github.com/helpdesk-io/helpdesk-service/internal/policy"
	"github.com/helpdesk-io/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-io/helpdesk-service/pkg/util/errorutil"
)

const statsCacheKey = "helpdesk:stats:snapshot"

// StatsService serves the admin aggregate snapshot, with a short-lived Redis
// cache in front of the counting queries. A cache miss or an unreachable
// Redis falls through to the database.
type StatsService struct {
	stats    repository.StatsRepository
	redis    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// StatsDependencies bundles collaborators for stats service.
type StatsDependencies struct {
	StatsRepo repository.StatsRepository
	Redis     *persistence.Redis
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	return &StatsService{
		stats:    deps.StatsRepo,
		redis:    deps.Redis,
		cacheTTL: deps.CacheTTL,
		logger:   deps.Logger,
	}
}

// Snapshot returns the aggregate counts. Admin only.
func (s *StatsService) Snapshot(ctx context.Context, actor policy.Actor) (*domain.Stats, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins may view statistics")
	}

	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.toCache(ctx, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context) *domain.Stats {
	if s.redis == nil || s.redis.Client == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.redis.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("discarding malformed stats snapshot", zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, stats *domain.Stats) {
	if s.redis == nil || s.redis.Client == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Client.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("unable to cache stats snapshot", zap.Error(err))
	}
}
