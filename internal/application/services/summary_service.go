package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/summarybot/summarybot/internal/core/domain/summary"
	"github.com/summarybot/summarybot/internal/core/ports"
)

// SummaryService implements ports.SummaryService: the cooldown check runs
// before any expensive work, the cache is consulted next, and only then is the
// summarize function invoked. The cache is an optimization; every cache
// problem short of a contract violation degrades to doing the work fresh.
type SummaryService struct {
	cache   ports.Cache
	limiter ports.RateLimiter
	logger  *logrus.Logger
	timeNow func() time.Time
}

func NewSummaryService(cache ports.Cache, limiter ports.RateLimiter, logger *logrus.Logger) *SummaryService {
	return &SummaryService{cache: cache, limiter: limiter, logger: logger, timeNow: time.Now}
}

// Summarize implements ports.SummaryService.Summarize.
func (s *SummaryService) Summarize(ctx context.Context, kind summary.ContentKind, reference, userID, channelID string, produce ports.SummarizeFunc) (string, error) {
	decision, err := s.limiter.AllowAction(userID, channelID, s.timeNow())
	if err != nil {
		return "", err
	}
	if !decision.Allowed {
		return "", &ports.RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	key := summary.Fingerprint(kind, reference)
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return string(cached), nil
	}

	text, err := produce(ctx)
	if err != nil {
		return "", err
	}

	// ttl 0 selects the cache's configured default.
	if err := s.cache.Set(ctx, key, []byte(text), 0); err != nil {
		if s.logger != nil {
			s.logger.WithField("key", key).WithError(err).Warn("failed to cache summary")
		}
	}
	return text, nil
}

// Invalidate implements ports.SummaryService.Invalidate.
func (s *SummaryService) Invalidate(ctx context.Context, kind summary.ContentKind, reference string) error {
	return s.cache.Delete(ctx, summary.Fingerprint(kind, reference))
}

var _ ports.SummaryService = (*SummaryService)(nil)
