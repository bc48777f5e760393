package ports

import (
	"errors"
	"time"
)

// ErrUnknownScope is returned when a scope other than user or channel is
// passed to the rate limiter. It is a programming defect, not a denial.
var ErrUnknownScope = errors.New("ratelimit: unknown scope")

// Scope is the dimension along which rate limiting is independently enforced.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeChannel Scope = "channel"
)

// Decision is the outcome of a rate-limit check. When Allowed is false,
// RetryAfter holds how long the actor must wait before the next attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter bounds how often an actor may trigger expensive summarization
// work. now is supplied by the caller so decisions are deterministic under
// test. Implementations MUST be safe for concurrent use and MUST make the
// check-and-record step atomic per actor.
type RateLimiter interface {
	// Allow checks a single scope and records the action when permitted.
	Allow(scope Scope, actorID string, now time.Time) (Decision, error)
	// AllowAction checks the user and channel scopes together. The action is
	// permitted only when both scopes allow it; a denial leaves every scope's
	// state untouched.
	AllowAction(userID, channelID string, now time.Time) (Decision, error)
}
