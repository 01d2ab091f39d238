package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/school-records/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Dashboard cache keys.
const (
	dashboardKeyPrefix = "dashboard"
	dashboardPattern   = dashboardKeyPrefix + ":*"
)

func studentDashboardKey(userID string) string {
	return fmt.Sprintf("%s:student:%s", dashboardKeyPrefix, userID)
}

func instructorDashboardKey(userID string) string {
	return fmt.Sprintf("%s:instructor:%s", dashboardKeyPrefix, userID)
}

// CacheInvalidator drops cached dashboards after writes that change them.
type CacheInvalidator interface {
	InvalidateStudent(ctx context.Context, userIDs ...string)
	InvalidateInstructor(ctx context.Context, userIDs ...string)
	InvalidateDashboards(ctx context.Context)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation(true, duration)
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// InvalidateStudent drops the cached dashboards of the given students.
func (s *CacheService) InvalidateStudent(ctx context.Context, userIDs ...string) {
	s.deleteKeys(ctx, studentDashboardKey, userIDs)
}

// InvalidateInstructor drops the cached dashboards of the given instructors.
func (s *CacheService) InvalidateInstructor(ctx context.Context, userIDs ...string) {
	s.deleteKeys(ctx, instructorDashboardKey, userIDs)
}

// InvalidateDashboards drops every cached dashboard.
func (s *CacheService) InvalidateDashboards(ctx context.Context) {
	_ = s.Invalidate(ctx, dashboardPattern)
}

func (s *CacheService) deleteKeys(ctx context.Context, keyFn func(string) string, userIDs []string) {
	if !s.Enabled() {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			keys = append(keys, keyFn(id))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.repo.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// noopInvalidator is used when a service is built without a cache.
type noopInvalidator struct{}

func (noopInvalidator) InvalidateStudent(context.Context, ...string)    {}
func (noopInvalidator) InvalidateInstructor(context.Context, ...string) {}
func (noopInvalidator) InvalidateDashboards(context.Context)            {}
