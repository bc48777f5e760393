package services

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/summarybot/summarybot/internal/core/ports"
)

// staleAfterFactor controls when PruneStale drops an idle actor entry,
// expressed as a multiple of the largest configured interval.
const staleAfterFactor = 4

// RateLimiterConfig groups the per-scope minimum intervals between actions.
// An interval <= 0 disables limiting for that scope.
type RateLimiterConfig struct {
	UserInterval    time.Duration
	ChannelInterval time.Duration
}

// RateLimiterService implements ports.RateLimiter with an in-memory last-seen
// table. A single mutex makes check-and-record atomic per call, which is what
// keeps two simultaneous requests from both being allowed for the same actor.
type RateLimiterService struct {
	mu        sync.Mutex
	lastSeen  map[ports.Scope]map[string]time.Time
	intervals map[ports.Scope]time.Duration
	logger    *logrus.Logger
	denials   *prometheus.CounterVec // by scope, optional
}

// NewRateLimiterService creates a rate limiter from cfg. logger and denials
// may be nil.
func NewRateLimiterService(cfg *RateLimiterConfig, logger *logrus.Logger, denials *prometheus.CounterVec) *RateLimiterService {
	// Defaults match the bot's command cooldowns.
	ui := 5 * time.Minute
	ci := 2 * time.Minute
	if cfg != nil {
		ui = cfg.UserInterval
		ci = cfg.ChannelInterval
	}
	return &RateLimiterService{
		lastSeen: map[ports.Scope]map[string]time.Time{
			ports.ScopeUser:    {},
			ports.ScopeChannel: {},
		},
		intervals: map[ports.Scope]time.Duration{
			ports.ScopeUser:    ui,
			ports.ScopeChannel: ci,
		},
		logger:  logger,
		denials: denials,
	}
}

// Allow implements ports.RateLimiter.Allow for a single scope.
func (s *RateLimiterService) Allow(scope ports.Scope, actorID string, now time.Time) (ports.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interval, ok := s.intervals[scope]
	if !ok {
		return ports.Decision{}, ports.ErrUnknownScope
	}
	if retry, denied := s.checkLocked(scope, actorID, interval, now); denied {
		s.observeDenial(scope, actorID, retry)
		return ports.Decision{Allowed: false, RetryAfter: retry}, nil
	}
	s.recordLocked(scope, actorID, interval, now)
	return ports.Decision{Allowed: true}, nil
}

// AllowAction implements ports.RateLimiter.AllowAction. Both scopes are
// evaluated under one lock and last-seen state is only updated when both
// permit the action, so a denial is fully transparent to future checks.
func (s *RateLimiterService) AllowAction(userID, channelID string, now time.Time) (ports.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userRetry, userDenied := s.checkLocked(ports.ScopeUser, userID, s.intervals[ports.ScopeUser], now)
	chanRetry, chanDenied := s.checkLocked(ports.ScopeChannel, channelID, s.intervals[ports.ScopeChannel], now)
	if userDenied || chanDenied {
		retry := userRetry
		if chanRetry > retry {
			retry = chanRetry
		}
		if userDenied {
			s.observeDenial(ports.ScopeUser, userID, userRetry)
		}
		if chanDenied {
			s.observeDenial(ports.ScopeChannel, channelID, chanRetry)
		}
		return ports.Decision{Allowed: false, RetryAfter: retry}, nil
	}
	s.recordLocked(ports.ScopeUser, userID, s.intervals[ports.ScopeUser], now)
	s.recordLocked(ports.ScopeChannel, channelID, s.intervals[ports.ScopeChannel], now)
	return ports.Decision{Allowed: true}, nil
}

// checkLocked reports whether the action would be denied for scope/actor and
// the remaining wait. It does not mutate state. Callers must hold s.mu.
func (s *RateLimiterService) checkLocked(scope ports.Scope, actorID string, interval time.Duration, now time.Time) (time.Duration, bool) {
	if interval <= 0 {
		return 0, false
	}
	last, seen := s.lastSeen[scope][actorID]
	if !seen {
		return 0, false
	}
	elapsed := now.Sub(last)
	if elapsed >= interval {
		return 0, false
	}
	return interval - elapsed, true
}

// recordLocked marks the action as taken. Callers must hold s.mu.
func (s *RateLimiterService) recordLocked(scope ports.Scope, actorID string, interval time.Duration, now time.Time) {
	if interval <= 0 {
		return
	}
	s.lastSeen[scope][actorID] = now
}

// PruneStale removes actor entries idle long past any interval and returns how
// many were dropped. The last-seen table otherwise grows with every actor ever
// seen.
func (s *RateLimiterService) PruneStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxInterval time.Duration
	for _, iv := range s.intervals {
		if iv > maxInterval {
			maxInterval = iv
		}
	}
	cutoff := staleAfterFactor * maxInterval
	if cutoff <= 0 {
		return 0
	}
	removed := 0
	for _, actors := range s.lastSeen {
		for actorID, last := range actors {
			if now.Sub(last) >= cutoff {
				delete(actors, actorID)
				removed++
			}
		}
	}
	return removed
}

func (s *RateLimiterService) observeDenial(scope ports.Scope, actorID string, retry time.Duration) {
	if s.denials != nil {
		s.denials.WithLabelValues(string(scope)).Inc()
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"scope": scope, "actor_id": actorID, "retry_after": retry}).Debug("rate limit denied")
	}
}

var _ ports.RateLimiter = (*RateLimiterService)(nil)
